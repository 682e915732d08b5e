package hooktab

import (
	"context"
	"fmt"

	"github.com/apex/log"
)

// Storage keys of the persisted tables. There is no schema version: both
// keys are overwritten wholesale on every cold run, and anything that does
// not decode as a pair list is read back as an empty table.
const (
	ClassHooksKey = "clientClassHooks"
	EnumHooksKey  = "clientEnumHooks"
)

// Resources is the persisted key-value resource the table is cached in.
type Resources interface {
	GetItem(ctx context.Context, key string) ([]byte, error)
	SetItem(ctx context.Context, key string, value []byte) error
}

// Save writes both maps of t under their fixed keys.
func Save(ctx context.Context, res Resources, t *Table) error {
	for _, item := range []struct {
		key string
		m   *Map
	}{
		{ClassHooksKey, t.Classes},
		{EnumHooksKey, t.Enums},
	} {
		data, err := item.m.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encoding %s: %w", item.key, err)
		}
		if err := res.SetItem(ctx, item.key, data); err != nil {
			return fmt.Errorf("writing %s: %w", item.key, err)
		}
	}
	return nil
}

// Load reads the cached table. It never fails: a missing key, a backend
// error or a malformed value all read as an empty map and are reported to l.
// A nil l logs to log.Log.
func Load(ctx context.Context, res Resources, l log.Interface) *Table {
	return &Table{
		Classes: FromEntries(loadEntries(ctx, res, ClassHooksKey, l)),
		Enums:   FromEntries(loadEntries(ctx, res, EnumHooksKey, l)),
	}
}

// HasSaved reports whether the cache holds at least one class or enum hook.
func HasSaved(ctx context.Context, res Resources, l log.Interface) bool {
	return len(loadEntries(ctx, res, ClassHooksKey, l))+len(loadEntries(ctx, res, EnumHooksKey, l)) > 0
}

func loadEntries(ctx context.Context, res Resources, key string, l log.Interface) []Entry {
	if l == nil {
		l = log.Log
	}
	data, err := res.GetItem(ctx, key)
	if err != nil {
		l.WithError(err).WithField("key", key).Debug("no cached hooks")
		return nil
	}
	entries, err := decodeEntries(data)
	if err != nil {
		l.WithError(err).WithField("key", key).Warn("ignoring malformed cached hooks")
		return nil
	}
	return entries
}
