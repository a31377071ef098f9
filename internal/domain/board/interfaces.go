package board

import (
	"context"

	"github.com/rpggio/taskdesk/internal/domain/activity"
)

// StorageKey is the single slot key the document is persisted under.
const StorageKey = "ecc_store_v1"

// Slot is key-value string storage backing a Store.
type Slot interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// ActivityRepository logs board mutations.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
