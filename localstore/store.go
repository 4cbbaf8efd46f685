// Package localstore keeps the client's offline state in a single bbolt file:
// the working plan, one backup slot, the bearer token and the cached profile.
package localstore

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"travel-planner-server/itinerary"
	"travel-planner-server/models"

	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

const (
	bucketName = "planner"

	KeyPlan   = "travelPlan"
	KeyBackup = "travelPlanBackup"
	KeyToken  = "authToken"
	KeyUser   = "currentUser"
)

var ErrFilePathIsBlank = errors.New("local store file path is blank")

type Store struct {
	db *bolt.DB
}

// Open creates the file and bucket if needed.
func Open(filePath string) (*Store, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return nil, ErrFilePathIsBlank
	}

	db, err := bolt.Open(filePath, 0600, &bolt.Options{Timeout: 30 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) put(key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), value)
	})
}

// get returns a copy of the stored value, or nil when the key is absent.
func (s *Store) get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucketName)).Get([]byte(key)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

func (s *Store) delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(key))
	})
}

func (s *Store) putJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.put(key, data)
}

// SavePlan overwrites the working plan slot.
func (s *Store) SavePlan(plan itinerary.Plan) error {
	return s.putJSON(KeyPlan, plan)
}

// LoadPlan returns the working plan. A missing or unreadable document yields
// the empty default plan; the unreadable one is dropped.
func (s *Store) LoadPlan() (itinerary.Plan, error) {
	data, err := s.get(KeyPlan)
	if err != nil {
		return itinerary.EmptyPlan(), err
	}
	if data == nil {
		return itinerary.EmptyPlan(), nil
	}

	var plan itinerary.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		log.Warn().Err(err).Str("pkg", "localstore").Str("key", KeyPlan).Msg("discarding malformed stored plan")
		if delErr := s.delete(KeyPlan); delErr != nil {
			return itinerary.EmptyPlan(), delErr
		}
		return itinerary.EmptyPlan(), nil
	}
	if plan.Days == nil {
		plan.Days = []itinerary.Day{}
	}
	return plan, nil
}

func (s *Store) SaveBackup(plan itinerary.Plan) error {
	return s.putJSON(KeyBackup, plan)
}

// LoadBackup reports ok=false when the backup slot is empty. A malformed
// backup is logged and treated as empty.
func (s *Store) LoadBackup() (itinerary.Plan, bool, error) {
	data, err := s.get(KeyBackup)
	if err != nil || data == nil {
		return itinerary.Plan{}, false, err
	}
	var plan itinerary.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		log.Warn().Err(err).Str("pkg", "localstore").Str("key", KeyBackup).Msg("ignoring malformed backup")
		return itinerary.Plan{}, false, nil
	}
	return plan, true, nil
}

func (s *Store) ClearBackup() error {
	return s.delete(KeyBackup)
}

func (s *Store) SaveToken(token string) error {
	return s.put(KeyToken, []byte(token))
}

func (s *Store) LoadToken() (string, error) {
	data, err := s.get(KeyToken)
	return string(data), err
}

func (s *Store) ClearToken() error {
	return s.delete(KeyToken)
}

func (s *Store) SaveUser(user models.UserSummary) error {
	return s.putJSON(KeyUser, user)
}

// LoadUser returns nil when no profile is cached.
func (s *Store) LoadUser() (*models.UserSummary, error) {
	data, err := s.get(KeyUser)
	if err != nil || data == nil {
		return nil, err
	}
	var user models.UserSummary
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) ClearUser() error {
	return s.delete(KeyUser)
}
