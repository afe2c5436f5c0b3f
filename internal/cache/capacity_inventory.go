package cache

import (
	"context"
	"fmt"

	apperrors "go-ticket-core/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

// CapacityInventoryManager is the Redis hot path in front of the capacity
// table. It absorbs the burst of reservation attempts before anything reaches
// Postgres; the database row stays the source of truth.
type CapacityInventoryManager interface {
	// WarmUpInventory preloads a capacity's available units into Redis.
	WarmUpInventory(ctx context.Context, capacityID int, units int) error
	GetUnits(ctx context.Context, capacityID int) (int, error)
	// DecrementUnits atomically takes units via a Lua script; false means the
	// cached count was insufficient.
	DecrementUnits(ctx context.Context, capacityID int, units int) (bool, error)
	// RollbackUnits returns units taken by a prepare that failed downstream.
	RollbackUnits(ctx context.Context, capacityID int, units int) error
}

type CapacityInventoryManagerImpl struct {
	client *redis.Client
}

func NewCapacityInventoryManager(client *redis.Client) CapacityInventoryManager {
	return &CapacityInventoryManagerImpl{
		client: client,
	}
}

func (m *CapacityInventoryManagerImpl) getUnitsKey(capacityID int) string {
	return fmt.Sprintf("capacity:%d:units", capacityID)
}

func (m *CapacityInventoryManagerImpl) WarmUpInventory(ctx context.Context, capacityID int, units int) error {
	key := m.getUnitsKey(capacityID)
	return m.client.Set(ctx, key, units, 0).Err()
}

func (m *CapacityInventoryManagerImpl) GetUnits(ctx context.Context, capacityID int) (int, error) {
	key := m.getUnitsKey(capacityID)
	val, err := m.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return -1, apperrors.ErrCapacityNotFound
	}
	return val, err
}

func (m *CapacityInventoryManagerImpl) DecrementUnits(ctx context.Context, capacityID int, units int) (bool, error) {
	if units <= 0 {
		return false, apperrors.ErrInvalidQuantity
	}

	key := m.getUnitsKey(capacityID)

	script := `
		local units_key = KEYS[1]
		local request_qty = tonumber(ARGV[1])

		local units = redis.call('GET', units_key)

		-- not warmed up
		if not units then
			return -2
		end

		if tonumber(units) < request_qty then
			return -1
		end

		redis.call('DECRBY', units_key, request_qty)
		return 1
	`

	result, err := m.client.Eval(ctx, script, []string{key}, units).Result()
	if err != nil {
		return false, err
	}

	switch result.(int64) {
	case 1:
		return true, nil
	case -1:
		return false, nil
	case -2:
		return false, apperrors.ErrCapacityNotFound
	default:
		return false, apperrors.ErrInternalServerError
	}
}

func (m *CapacityInventoryManagerImpl) RollbackUnits(ctx context.Context, capacityID int, units int) error {
	if units <= 0 {
		return apperrors.ErrInvalidQuantity
	}

	key := m.getUnitsKey(capacityID)

	// Only roll back a key that still exists, so a rollback after a flush or
	// re-warm does not resurrect stale inventory.
	script := `
		local units_key = KEYS[1]
		local rollback_qty = tonumber(ARGV[1])

		if redis.call('EXISTS', units_key) == 0 then
			return 0
		end

		redis.call('INCRBY', units_key, rollback_qty)
		return 1
	`

	return m.client.Eval(ctx, script, []string{key}, units).Err()
}
