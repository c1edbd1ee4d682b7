package hg

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultKeyPrefix prefixes every key the tracker writes.
	DefaultKeyPrefix = "hg"

	guestNamespace = "guest"

	// schemaVersion is written into every stored envelope.
	schemaVersion = 1
)

// envelope wraps every stored payload with its schema version.
// Values written before versioning (a bare payload) decode as version 0.
type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Gateway maps (user, collection) pairs onto namespaced Store keys and does
// the JSON encoding. Read problems degrade to "no data" and write problems
// are logged; neither is fatal to the caller.
type Gateway struct {
	store    Store
	prefix   string
	logger   Logger
	recorder Recorder
}

// NewGateway creates a Gateway. An empty prefix means DefaultKeyPrefix.
func NewGateway(store Store, prefix string, logger Logger, recorder Recorder) *Gateway {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Gateway{store: store, prefix: prefix, logger: logger, recorder: recorder}
}

// NamespacedKey returns "{prefix}_{userID}_{collection}". An empty userID
// maps to the guest namespace.
func (g *Gateway) NamespacedKey(userID string, c Collection) string {
	if userID == "" {
		userID = guestNamespace
	}
	return fmt.Sprintf("%s_%s_%s", g.prefix, userID, c)
}

// SessionKey is the singleton key holding the logged-in user.
func (g *Gateway) SessionKey() string {
	return g.prefix + "_session_user"
}

// RegistryKey is the singleton key holding every registered user.
func (g *Gateway) RegistryKey() string {
	return g.prefix + "_registered_users"
}

// StoredCollections lists, in Collections order, the collections that have a
// value stored for userID.
func (g *Gateway) StoredCollections(userID string) ([]Collection, error) {
	prefix := g.NamespacedKey(userID, "")
	keys, err := g.store.Keys(prefix)
	if err != nil {
		return nil, &StorageReadError{Key: prefix + "*", Err: err}
	}
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[strings.TrimPrefix(k, prefix)] = true
	}
	stored := make([]Collection, 0, len(Collections))
	for _, c := range Collections {
		if present[string(c)] {
			stored = append(stored, c)
		}
	}
	return stored, nil
}

// Load reads the collection for userID into dst. It returns false when the
// key is missing or the stored value can't be decoded; the caller then
// applies its defaults. dst may be partially written on false.
func (g *Gateway) Load(userID string, c Collection, dst any) bool {
	return g.loadKey(g.NamespacedKey(userID, c), string(c), dst)
}

// Save writes value as the collection for userID. A non-nil error is a
// *StorageWriteError that has already been logged.
func (g *Gateway) Save(userID string, c Collection, value any) error {
	return g.saveKey(g.NamespacedKey(userID, c), string(c), value)
}

func (g *Gateway) loadKey(key, label string, dst any) bool {
	raw, found, err := g.store.Get(key)
	if err != nil {
		rerr := &StorageReadError{Key: key, Err: err}
		g.logger.Error("storage read failed", "key", key, "error", rerr)
		g.recorder.StorageRead(label, "error")
		return false
	}
	if !found {
		g.recorder.StorageRead(label, "missing")
		return false
	}
	if err := decodeValue([]byte(raw), dst); err != nil {
		rerr := &StorageReadError{Key: key, Err: err}
		g.logger.Warn("stored value unreadable, using defaults", "key", key, "error", rerr)
		g.recorder.StorageRead(label, "corrupt")
		return false
	}
	g.recorder.StorageRead(label, "ok")
	return true
}

func (g *Gateway) saveKey(key, label string, value any) error {
	raw, err := encodeValue(value)
	if err == nil {
		err = g.store.Set(key, string(raw))
	}
	if err != nil {
		werr := &StorageWriteError{Key: key, Err: err}
		g.logger.Error("storage write failed", "key", key, "error", werr)
		g.recorder.StorageWrite(label, "error")
		return werr
	}
	g.recorder.StorageWrite(label, "ok")
	return nil
}

func (g *Gateway) deleteKey(key string) {
	if err := g.store.Delete(key); err != nil {
		g.logger.Error("storage delete failed", "key", key, "error", &StorageWriteError{Key: key, Err: err})
	}
}

func encodeValue(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	return json.Marshal(envelope{Version: schemaVersion, Data: data})
}

func decodeValue(raw []byte, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return errors.New("empty value")
	}
	if raw[0] == '{' {
		var env envelope
		if err := json.Unmarshal(raw, &env); err == nil && env.Version > 0 && len(env.Data) > 0 {
			if env.Version > schemaVersion {
				return fmt.Errorf("unsupported schema version %d", env.Version)
			}
			return json.Unmarshal(env.Data, dst)
		}
	}
	// Unversioned payload.
	return json.Unmarshal(raw, dst)
}
