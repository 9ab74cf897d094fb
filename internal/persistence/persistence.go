package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/markusressel/pid2go/internal/control_loop"
	"github.com/markusressel/pid2go/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	// BucketProfiles holds one nested bucket per simulation id
	BucketProfiles = "profiles"
)

// Profile is a named set of gains, saved by the user while tuning a simulation
type Profile struct {
	Name    string             `json:"name"`
	Gains   control_loop.Gains `json:"gains"`
	SavedAt time.Time          `json:"savedAt"`
}

type Persistence interface {
	Init() error

	SaveProfile(simulationId string, profile Profile) error
	LoadProfile(simulationId string, name string) (Profile, error)
	DeleteProfile(simulationId string, name string) error
	// ListProfiles returns all profiles of the given simulation, sorted by name
	ListProfiles(simulationId string) ([]Profile, error)
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	p := &persistence{
		dbPath: dbPath,
	}
	return p
}

func (p persistence) Init() (err error) {
	// get parent path of dbPath
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		// create directory
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SaveProfile saves the given profile, replacing any existing profile with the same name
func (p persistence) SaveProfile(simulationId string, profile Profile) (err error) {
	if len(profile.Name) <= 0 {
		return errors.New("profile name must not be empty")
	}
	if err := profile.Gains.Validate(); err != nil {
		return err
	}

	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	if profile.SavedAt.IsZero() {
		profile.SavedAt = time.Now()
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists([]byte(BucketProfiles))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		b, err := root.CreateBucketIfNotExists([]byte(simulationId))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		return b.Put([]byte(profile.Name), data)
	})
}

// LoadProfile loads a single profile, os.ErrNotExist is returned if there is none
func (p persistence) LoadProfile(simulationId string, name string) (Profile, error) {
	db, err := p.openPersistence()
	if err != nil {
		return Profile{}, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var profile Profile
	err = db.Update(func(tx *bolt.Tx) error {
		b := simulationBucket(tx, simulationId)
		if b == nil {
			return os.ErrNotExist
		}
		v := b.Get([]byte(name))
		if v == nil {
			return os.ErrNotExist
		}

		err := json.Unmarshal(v, &profile)
		if err != nil {
			// if we cannot read the saved data, delete it
			ui.Warning("Unable to unmarshal saved profile %s of %s: %v", name, simulationId, err)
			err := b.Delete([]byte(name))
			if err != nil {
				ui.Error("Unable to delete corrupt profile %s: %v", name, err)
			}
			return os.ErrNotExist
		}

		return nil
	})

	return profile, err
}

func (p persistence) DeleteProfile(simulationId string, name string) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		b := simulationBucket(tx, simulationId)
		if b == nil {
			// no profiles yet
			return os.ErrNotExist
		}
		v := b.Get([]byte(name))
		if v == nil {
			return os.ErrNotExist
		}

		return b.Delete([]byte(name))
	})
}

func (p persistence) ListProfiles(simulationId string) ([]Profile, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	profiles := []Profile{}
	err = db.View(func(tx *bolt.Tx) error {
		b := simulationBucket(tx, simulationId)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var profile Profile
			if err := json.Unmarshal(v, &profile); err != nil {
				ui.Warning("Skipping unreadable profile %s of %s: %v", string(k), simulationId, err)
				return nil
			}
			profiles = append(profiles, profile)
			return nil
		})
	})

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles, err
}

func simulationBucket(tx *bolt.Tx, simulationId string) *bolt.Bucket {
	root := tx.Bucket([]byte(BucketProfiles))
	if root == nil {
		return nil
	}
	return root.Bucket([]byte(simulationId))
}
