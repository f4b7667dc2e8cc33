package settings

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/mlutzke/raceday/log"
)

const bucketName = "raceday-settings"

// KVStore persists settings in a NATS JetStream key-value bucket so
// the preference survives restarts and is shared between instances.
type KVStore struct {
	kv    jetstream.KeyValue
	mutex sync.Mutex
}

func NewKVStore(ctx context.Context, js jetstream.JetStream) (*KVStore, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: bucketName,
	})
	if err != nil {
		return nil, err
	}
	return &KVStore{kv: kv}, nil
}

func (s *KVStore) PreferredStartPos(ctx context.Context) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	kve, err := s.kv.Get(ctx, KeyPreferredStartPos)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return 0, ErrNotSet
		}
		return 0, err
	}
	ret, err := strconv.Atoi(string(kve.Value()))
	if err != nil {
		// corrupt value, treat as unset
		log.Warn("unreadable start position setting",
			log.String("value", string(kve.Value())), log.ErrorField(err))
		return 0, ErrNotSet
	}
	return ret, nil
}

func (s *KVStore) SetPreferredStartPos(ctx context.Context, pos int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, err := s.kv.Put(ctx, KeyPreferredStartPos, []byte(strconv.Itoa(pos)))
	return err
}
