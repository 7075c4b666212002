package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, tx pgx.Tx, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.GoogleID == user.GoogleID {
			return fmt.Errorf("google id already exists")
		}
	}
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.GoogleID == googleID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.wallets[w.ID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.UserID == userID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) GetByWalletNumber(ctx context.Context, walletNumber string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.WalletNumber == walletNumber {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	w.Balance = balance
	w.UpdatedAt = time.Now()
	return nil
}

func (r *inMemoryWalletRepo) Credit(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	w.Balance = w.Balance.Add(amount)
	w.UpdatedAt = time.Now()
	return nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
	walletRepo   *inMemoryWalletRepo
}

func newInMemoryTransactionRepo(walletRepo *inMemoryWalletRepo) *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{
		transactions: make(map[uuid.UUID]*domain.Transaction),
		walletRepo:   walletRepo,
	}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) CreateInTx(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	return r.Create(ctx, t)
}

func (r *inMemoryTransactionRepo) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.transactions {
		if t.Reference != nil && *t.Reference == reference {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return fmt.Errorf("transaction not found")
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	return nil
}

func (r *inMemoryTransactionRepo) MarkSuccessIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok || t.Status != domain.TransactionStatusPending {
		return false, nil
	}
	t.Status = domain.TransactionStatusSuccess
	t.UpdatedAt = time.Now()
	return true, nil
}

func (r *inMemoryTransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]ports.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var entries []ports.LedgerEntry
	for _, t := range r.transactions {
		if t.WalletID != walletID {
			continue
		}
		entry := ports.LedgerEntry{Transaction: *t}
		if t.RecipientWalletID != nil {
			if w, _ := r.walletRepo.GetByIDForUpdate(ctx, nil, *t.RecipientWalletID); w != nil {
				num := w.WalletNumber
				entry.RecipientWalletNumber = &num
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// --- In-Memory API Key Repo ---

type inMemoryApiKeyRepo struct {
	mu   sync.RWMutex
	keys map[uuid.UUID]*domain.ApiKey
}

func newInMemoryApiKeyRepo() *inMemoryApiKeyRepo {
	return &inMemoryApiKeyRepo{keys: make(map[uuid.UUID]*domain.ApiKey)}
}

func (r *inMemoryApiKeyRepo) Create(ctx context.Context, key *domain.ApiKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *key
	r.keys[key.ID] = &cp
	return nil
}

func (r *inMemoryApiKeyRepo) CountActive(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, k := range r.keys {
		if k.UserID == userID && k.IsActive && k.ExpiresAt.After(now) {
			count++
		}
	}
	return count, nil
}

func (r *inMemoryApiKeyRepo) ListActive(ctx context.Context, now time.Time) ([]domain.ApiKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var keys []domain.ApiKey
	for _, k := range r.keys {
		if k.IsActive && k.ExpiresAt.After(now) {
			keys = append(keys, *k)
		}
	}
	return keys, nil
}

func (r *inMemoryApiKeyRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ApiKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var keys []domain.ApiKey
	for _, k := range r.keys {
		if k.UserID == userID {
			keys = append(keys, *k)
		}
	}
	return keys, nil
}

func (r *inMemoryApiKeyRepo) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.ApiKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.keys[id]
	if !ok || k.UserID != userID {
		return nil, nil
	}
	cp := *k
	return &cp, nil
}

func (r *inMemoryApiKeyRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[id]
	if !ok {
		return fmt.Errorf("api key not found")
	}
	k.IsActive = false
	k.UpdatedAt = time.Now()
	return nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes transaction blocks behind a single mutex,
// standing in for row-level locks. Concurrent transfers therefore behave the
// way SELECT FOR UPDATE makes them behave against real PostgreSQL.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &serialTx{release: &t.mu}, nil
}

// serialTx is a pgx.Tx that holds the transactor mutex until the first
// Commit or Rollback.
type serialTx struct {
	release *sync.Mutex
	once    sync.Once
}

func (t *serialTx) done() {
	t.once.Do(func() { t.release.Unlock() })
}

func (t *serialTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *serialTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *serialTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *serialTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *serialTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *serialTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *serialTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *serialTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *serialTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *serialTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *serialTx) Conn() *pgx.Conn { return nil }

// --- Stub external adapters ---

// stubIdentityVerifier resolves preregistered ID tokens to identities.
type stubIdentityVerifier struct {
	identities map[string]ports.ExternalIdentity
}

func newStubIdentityVerifier() *stubIdentityVerifier {
	return &stubIdentityVerifier{identities: make(map[string]ports.ExternalIdentity)}
}

func (v *stubIdentityVerifier) register(token string, identity ports.ExternalIdentity) {
	v.identities[token] = identity
}

func (v *stubIdentityVerifier) Verify(ctx context.Context, idToken string) (*ports.ExternalIdentity, error) {
	identity, ok := v.identities[idToken]
	if !ok {
		return nil, fmt.Errorf("unknown id token")
	}
	return &identity, nil
}

// stubPaymentProvider returns a canned checkout URL for every request.
type stubPaymentProvider struct{}

func (p *stubPaymentProvider) InitializeTransaction(ctx context.Context, req ports.InitializeRequest) (*ports.InitializeResponse, error) {
	return &ports.InitializeResponse{
		AuthorizationURL: "https://checkout.example.com/" + req.Reference,
		AccessCode:       "access_" + req.Reference,
		Reference:        req.Reference,
	}, nil
}
