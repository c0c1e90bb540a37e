//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"errors"
	"fmt"
	"time"

	cherrors "chat-hub/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	userPrefix    = "user:"
	userRefPrefix = "userref:"
)

type IUserRepository interface {
	CreateUser(email, hashedPassword string, name *string) (string, error)
	GetUserByEmail(email string) (User, error)
	GetUserByID(id string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the domain-friendly representation of an account in the
// repository layer. Name and Image feed the denormalized sender
// snapshot on messages.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         *string
	Image        *string
	Roles        []string
	CreatedAt    time.Time
}

type userRecord struct {
	ID           string   `msgpack:"id"`
	Email        string   `msgpack:"email"`
	PasswordHash string   `msgpack:"password_hash"`
	Name         *string  `msgpack:"name,omitempty"`
	Image        *string  `msgpack:"image,omitempty"`
	Roles        []string `msgpack:"roles"`
	CreatedAt    int64    `msgpack:"created_at"`
}

// CreateUser persists the account under "user:{email}" plus a
// "userref:{id}" entry so sessions can resolve their profile by id.
// It returns the newly generated user ID.
func (u UserRepository) CreateUser(email, hashedPassword string, name *string) (string, error) {
	newID := uuid.New().String()
	record := userRecord{
		ID:           newID,
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().Unix(),
	}

	data, err := msgpack.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := []byte(userPrefix + email)
		if _, err = txn.Get(key); err == nil {
			return cherrors.ErrUserAlreadyExists
		}
		if err = txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set([]byte(userRefPrefix+newID), []byte(email))
	})

	return newID, err
}

// GetUserByEmail retrieves an account by its email key.
func (u UserRepository) GetUserByEmail(email string) (User, error) {
	var record userRecord
	err := u.db.View(func(txn *badger.Txn) error {
		return readUser(txn, email, &record)
	})
	if err != nil {
		return User{}, err // Handled as ErrInvalidCredentials by the auth service
	}
	return toUserStruct(record), nil
}

// GetUserByID resolves a profile from a session's user id. A stale id
// whose account vanished maps to ErrUserNotFound.
func (u UserRepository) GetUserByID(id string) (User, error) {
	var record userRecord
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userRefPrefix + id))
		if err != nil {
			return err
		}
		var email string
		err = item.Value(func(val []byte) error {
			email = string(val)
			return nil
		})
		if err != nil {
			return err
		}
		return readUser(txn, email, &record)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return User{}, cherrors.ErrUserNotFound
		}
		return User{}, err
	}
	return toUserStruct(record), nil
}

func readUser(txn *badger.Txn, email string, record *userRecord) error {
	item, err := txn.Get([]byte(userPrefix + email))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return msgpack.Unmarshal(val, record)
	})
}

func toUserStruct(record userRecord) User {
	return User{
		ID:           record.ID,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		Name:         record.Name,
		Image:        record.Image,
		Roles:        record.Roles,
		CreatedAt:    time.Unix(record.CreatedAt, 0).UTC(),
	}
}
