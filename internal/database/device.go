package database

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"git.sr.ht/~jakintosh/meshauth/internal/service"
)

func (s *SQLiteStore) DeviceStore() service.DeviceStore {
	return s
}

func (s *SQLiteStore) InsertDevice(
	hardwareID string,
	name string,
	publicKey []byte,
) error {
	_, err := s.db.Exec(`
		INSERT INTO device (hardware_id, name, public_key, registered)
		VALUES (?1, ?2, ?3, ?4);`,
		hardwareID,
		name,
		publicKey,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("couldn't insert into device: %v", err)
	}
	return nil
}

func (s *SQLiteStore) GetDeviceKey(
	hardwareID string,
) (
	[]byte,
	error,
) {
	row := s.db.QueryRow(`
		SELECT public_key
		FROM device d
		WHERE d.hardware_id=?1;`,
		hardwareID,
	)

	var publicKey []byte
	err := row.Scan(&publicKey)
	if err != nil {
		return nil, err
	}
	return publicKey, nil
}

func (s *SQLiteStore) GetDevice(
	hardwareID string,
) (
	*service.Device,
	error,
) {
	row := s.db.QueryRow(`
		SELECT d.hardware_id, d.name, d.public_key, d.registered
		FROM device d
		WHERE d.hardware_id=?1;`,
		hardwareID,
	)

	var (
		id         string
		name       string
		publicKey  []byte
		registered int64
	)
	if err := row.Scan(&id, &name, &publicKey, &registered); err != nil {
		return nil, err
	}

	return &service.Device{
		HardwareID:   id,
		Name:         name,
		PublicKey:    ed25519.PublicKey(publicKey),
		RegisteredAt: time.Unix(registered, 0),
	}, nil
}
