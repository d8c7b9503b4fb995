package store

import "database/sql"

// MetaFlowHash is the metadata key holding the hash of the served flow table.
const MetaFlowHash = "flow_hash"

// SetMetadata upserts a key-value pair.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// RecordFlowHash stores hash as the current flow and returns the previous one.
func (s *Store) RecordFlowHash(hash string) (previous string, err error) {
	previous, err = s.GetMetadata(MetaFlowHash)
	if err != nil {
		return "", err
	}
	if previous == hash {
		return previous, nil
	}
	return previous, s.SetMetadata(MetaFlowHash, hash)
}
