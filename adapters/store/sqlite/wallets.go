package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/layer-3/walletgate/core"
)

const walletColumns = `id, wallet_address, name, role, is_active, created_at, created_by, notes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (core.Wallet, error) {
	var (
		w         core.Wallet
		role      string
		createdAt int64
	)
	if err := row.Scan(&w.ID, &w.Address, &w.Name, &role, &w.IsActive, &createdAt, &w.CreatedBy, &w.Notes); err != nil {
		return core.Wallet{}, err
	}
	w.Role = core.ParseRole(role)
	w.CreatedAt = fromMillis(createdAt)
	return w, nil
}

// ListWallets returns all authorized wallets, newest first.
func (s *Store) ListWallets(ctx context.Context) ([]core.Wallet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+walletColumns+` FROM authorized_wallets ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	wallets := make([]core.Wallet, 0)
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func getWallet(ctx context.Context, q queryRower, address string) (core.Wallet, error) {
	w, err := scanWallet(q.QueryRowContext(ctx,
		`SELECT `+walletColumns+` FROM authorized_wallets WHERE wallet_address = ?`, address))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Wallet{}, core.ErrNotFound
	}
	if err != nil {
		return core.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

// AddWallet authorizes a new wallet. The caller identity is recorded as
// creator.
func (s *Store) AddWallet(ctx context.Context, in core.WalletInput) (int64, error) {
	if in.Role == core.RoleNone {
		return 0, fmt.Errorf("%w: role is required", core.ErrInvalidInput)
	}
	in.Address = strings.TrimSpace(in.Address)

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx, actor string) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO authorized_wallets (wallet_address, name, role, is_active, created_at, created_by, notes)
			 VALUES (?, ?, ?, 1, ?, ?, ?)`,
			in.Address, in.Name, in.Role.String(), toMillis(s.now()), actor, in.Notes,
		)
		if isUniqueViolation(err) {
			return core.ErrAlreadyExists
		}
		if err != nil {
			return fmt.Errorf("insert wallet: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("insert wallet: %w", err)
		}

		created, err := getWallet(ctx, tx, in.Address)
		if err != nil {
			return err
		}
		return s.audit(ctx, tx, "authorized_wallets", "INSERT", actor, nil, created)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateWallet applies the non-nil fields of upd to the wallet at address.
func (s *Store) UpdateWallet(ctx context.Context, address string, upd core.WalletUpdate) (core.Wallet, error) {
	var updated core.Wallet
	err := s.withTx(ctx, func(tx *sql.Tx, actor string) error {
		before, err := getWallet(ctx, tx, address)
		if err != nil {
			return err
		}
		if upd.Empty() {
			updated = before
			return nil
		}

		var (
			sets []string
			args []any
		)
		if upd.Name != nil {
			sets = append(sets, "name = ?")
			args = append(args, *upd.Name)
		}
		if upd.Role != nil {
			sets = append(sets, "role = ?")
			args = append(args, upd.Role.String())
		}
		if upd.IsActive != nil {
			sets = append(sets, "is_active = ?")
			args = append(args, *upd.IsActive)
		}
		if upd.Notes != nil {
			sets = append(sets, "notes = ?")
			args = append(args, *upd.Notes)
		}
		args = append(args, address)

		if _, err := tx.ExecContext(ctx,
			`UPDATE authorized_wallets SET `+strings.Join(sets, ", ")+` WHERE wallet_address = ?`, args...); err != nil {
			return fmt.Errorf("update wallet: %w", err)
		}

		if updated, err = getWallet(ctx, tx, address); err != nil {
			return err
		}
		return s.audit(ctx, tx, "authorized_wallets", "UPDATE", actor, before, updated)
	})
	if err != nil {
		return core.Wallet{}, err
	}
	return updated, nil
}

// DeactivateWallet marks the wallet at address inactive. Its row is kept.
func (s *Store) DeactivateWallet(ctx context.Context, address string) error {
	inactive := false
	_, err := s.UpdateWallet(ctx, address, core.WalletUpdate{IsActive: &inactive})
	return err
}
