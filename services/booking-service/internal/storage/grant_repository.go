package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/md-rashed-zaman/salonbook/libs/kv"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

const (
	GrantsKey = "discountGrants"

	// grantSlot is the only entry ever written in the grants mapping.
	grantSlot = "newClient"
)

// GrantRepository stores at most one discount grant per key. By default that is
// one grant for the whole store; ForInstallation narrows it to one installation.
type GrantRepository struct {
	store  kv.Store
	logger *slog.Logger
	key    string
}

func NewGrantRepository(store kv.Store, logger *slog.Logger) *GrantRepository {
	return &GrantRepository{store: store, logger: logger, key: GrantsKey}
}

func (r *GrantRepository) ForInstallation(installation string) *GrantRepository {
	installation = strings.TrimSpace(installation)
	if installation == "" {
		return r
	}
	return &GrantRepository{store: r.store, logger: r.logger, key: GrantsKey + ":" + installation}
}

func (r *GrantRepository) Key() string {
	return r.key
}

// Load returns nil when no grant has been written or the stored mapping is
// unreadable.
func (r *GrantRepository) Load(ctx context.Context) (*model.Grant, error) {
	raw, err := r.store.Get(ctx, r.key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load grant: %w", err)
	}
	var grants map[string]model.Grant
	if err := json.Unmarshal([]byte(raw), &grants); err != nil {
		r.logger.Warn("discount grant unreadable; treating as absent", "key", r.key, "err", err)
		return nil, nil
	}
	g, ok := grants[grantSlot]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (r *GrantRepository) Save(ctx context.Context, g model.Grant) error {
	raw, err := json.Marshal(map[string]model.Grant{grantSlot: g})
	if err != nil {
		return fmt.Errorf("encode grant: %w", err)
	}
	if err := r.store.Set(ctx, r.key, string(raw)); err != nil {
		return fmt.Errorf("save grant: %w", err)
	}
	return nil
}
