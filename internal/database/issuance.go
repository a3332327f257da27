package database

import (
	"fmt"
	"time"

	"git.sr.ht/~jakintosh/meshauth/internal/service"
)

func (s *SQLiteStore) IssuanceStore() service.IssuanceStore {
	return s
}

func (s *SQLiteStore) InsertIssuance(
	hardwareID string,
	jti string,
	expiration int64,
) error {
	result, err := s.db.Exec(`
		INSERT INTO issuance (device, jti, expiration)
		SELECT d.id, ?1, ?2
		FROM device d
		WHERE d.hardware_id=?3;`,
		jti,
		expiration,
		hardwareID,
	)
	if err != nil {
		return fmt.Errorf("couldn't insert into issuance: %v", err)
	}

	count, err := result.RowsAffected()
	if err == nil && count == 0 {
		return fmt.Errorf("couldn't insert into issuance: no device '%s'", hardwareID)
	}
	return nil
}

func (s *SQLiteStore) ListActiveIssuances(
	hardwareID string,
	now int64,
) (
	[]service.Issuance,
	error,
) {
	rows, err := s.db.Query(`
		SELECT i.jti, i.expiration
		FROM issuance i
		JOIN device d ON i.device = d.id
		WHERE d.hardware_id=?1 AND i.expiration > ?2
		ORDER BY i.expiration;`,
		hardwareID,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("couldn't query issuance: %v", err)
	}
	defer rows.Close()

	var issuances []service.Issuance
	for rows.Next() {
		var (
			jti        string
			expiration int64
		)
		if err := rows.Scan(&jti, &expiration); err != nil {
			return nil, fmt.Errorf("couldn't scan issuance: %v", err)
		}
		issuances = append(issuances, service.Issuance{
			TokenID:    jti,
			Expiration: time.Unix(expiration, 0),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("couldn't read issuance rows: %v", err)
	}
	return issuances, nil
}
