package history

import (
	"path/filepath"
	"time"

	"github.com/crytic/trapcheck/harness"
	"github.com/crytic/trapcheck/traps"
	"github.com/crytic/trapcheck/utils"
	"github.com/fxamacker/cbor"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

// DatabaseFilename is the name of the verdict history database within a history directory.
const DatabaseFilename = "verdicts.db"

// verdictsBucket is the bbolt bucket holding one Record per test run, keyed by run ID.
var verdictsBucket = []byte("verdicts")

// ErrRecordNotFound is returned by Store.Get when no record exists for an ID.
var ErrRecordNotFound = errors.New("verdict record not found")

// Record describes a stored verdict. It is the persisted form of a harness.RunResult.
type Record struct {
	// ID is the run ID as bytes. UUIDv7 IDs make the bucket ordered by run start.
	ID []byte `cbor:"id"`

	// Name describes the test which ran.
	Name string `cbor:"name"`

	// Expected is the numeric trap code the test expected.
	Expected uint8 `cbor:"expected"`

	// HasRawObserved indicates RawObserved holds the observed raw value.
	HasRawObserved bool `cbor:"hasRawObserved"`

	// RawObserved is the raw value which was observed.
	RawObserved int64 `cbor:"rawObserved"`

	// Status is the verdict of the run.
	Status string `cbor:"status"`

	// Message is the diagnostic message describing the verdict.
	Message string `cbor:"message"`

	// StartTimeUnixNano is the time the run was started.
	StartTimeUnixNano int64 `cbor:"startTime"`

	// DurationNanos is the time between starting the run and its verdict.
	DurationNanos int64 `cbor:"duration"`
}

// NewRecord converts a harness.RunResult into its persisted form.
func NewRecord(result harness.RunResult) Record {
	record := Record{
		ID:                result.ID[:],
		Name:              result.Name,
		Expected:          uint8(result.Expected),
		Status:            string(result.Status),
		Message:           result.Message,
		StartTimeUnixNano: result.StartTime.UnixNano(),
		DurationNanos:     int64(result.Duration),
	}
	if result.RawObserved != nil {
		record.HasRawObserved = true
		record.RawObserved = *result.RawObserved
	}
	return record
}

// RunResult converts the Record back into a harness.RunResult. The observed trap code is reclassified from the raw
// value.
func (r Record) RunResult() (harness.RunResult, error) {
	id, err := uuid.FromBytes(r.ID)
	if err != nil {
		return harness.RunResult{}, errors.Wrap(err, "malformed verdict record id")
	}

	result := harness.RunResult{
		ID:        id,
		Name:      r.Name,
		Expected:  traps.TrapCode(r.Expected),
		Status:    harness.Status(r.Status),
		Message:   r.Message,
		StartTime: time.Unix(0, r.StartTimeUnixNano),
		Duration:  time.Duration(r.DurationNanos),
	}
	if r.HasRawObserved {
		raw := r.RawObserved
		result.RawObserved = &raw
		if code, err := traps.Classify(raw); err == nil {
			result.Observed = &code
		}
	}
	return result, nil
}

// Store is a persistent history of verdicts backed by a bbolt database. It is safe for concurrent use and implements
// harness.Reporter.
type Store struct {
	db *bbolt.DB
}

// Open opens the verdict history in the provided directory, creating the directory and database if needed.
func Open(directory string) (*Store, error) {
	if err := utils.MakeDirectory(directory); err != nil {
		return nil, errors.Wrap(err, "failed to create history directory")
	}

	db, err := bbolt.Open(filepath.Join(directory, DatabaseFilename), 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "could not open verdict history")
	}

	// create the bucket if it doesn't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(verdictsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.WithStack(err)
	}

	return &Store{db: db}, nil
}

// Record persists the verdict of a finished test run.
func (s *Store) Record(result harness.RunResult) error {
	value, err := cbor.Marshal(NewRecord(result), cbor.EncOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(verdictsBucket).Put(result.ID[:], value)
	})
}

// Report persists the verdict of a finished test run, implementing harness.Reporter.
func (s *Store) Report(result harness.RunResult) error {
	return s.Record(result)
}

// Get returns the verdict of the run with the provided ID, or ErrRecordNotFound.
func (s *Store) Get(id uuid.UUID) (harness.RunResult, error) {
	var record Record
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(verdictsBucket).Get(id[:])
		if data == nil {
			return nil
		}
		found = true
		return cbor.Unmarshal(data, &record)
	})
	if err != nil {
		return harness.RunResult{}, errors.WithStack(err)
	}
	if !found {
		return harness.RunResult{}, errors.Wrapf(ErrRecordNotFound, "run %s", id)
	}
	return record.RunResult()
}

// List returns up to limit verdicts, most recent first. A limit of zero or less returns every verdict.
func (s *Store) List(limit int) ([]harness.RunResult, error) {
	results := make([]harness.RunResult, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(verdictsBucket).Cursor()
		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			if limit > 0 && len(results) >= limit {
				break
			}

			var record Record
			if err := cbor.Unmarshal(v, &record); err != nil {
				return errors.Wrapf(err, "malformed verdict record %x", k)
			}
			result, err := record.RunResult()
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return errors.WithStack(s.db.Close())
}
