package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/squaredbusinessman/storefront-client/internal/logger"
	"github.com/squaredbusinessman/storefront-client/internal/model"
	"github.com/squaredbusinessman/storefront-client/internal/repository"
)

// ErrMalformedState содержимое слота не разбирается как сессия
var ErrMalformedState = errors.New("malformed persisted session")

type TokenChecker interface {
	CheckToken(token string) error
}

// Store зеркалит сессию в долговременный слот. Живая сессия одна, в service.State.Session,
// Store ее только сохраняет и поднимает после перезапуска.
type Store struct {
	slot   repository.Slot
	tokens TokenChecker
}

func NewStore(slot repository.Slot, tokens TokenChecker) *Store {
	if slot == nil {
		panic("nil session slot")
	}
	return &Store{
		slot:   slot,
		tokens: tokens,
	}
}

// Restore читает слот на старте. Битые данные считаются отсутствием сессии и наружу не выходят.
func (s *Store) Restore(ctx context.Context) (model.Session, bool) {
	sess, err := s.load(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrSlotEmpty) {
			logger.Log.Warn("session not restored", zap.Error(err))
		}
		if errors.Is(err, ErrMalformedState) {
			// битый слот чистим, чтобы не спотыкаться о него на каждом старте
			if delErr := s.slot.Delete(ctx); delErr != nil {
				logger.Log.Warn("drop malformed session", zap.Error(delErr))
			}
		}
		return model.Session{}, false
	}

	logger.Log.Info("session restored", zap.String("email", sess.Email))
	return sess, true
}

func (s *Store) load(ctx context.Context) (model.Session, error) {
	raw, err := s.slot.Load(ctx)
	if err != nil {
		return model.Session{}, err
	}

	var sess model.Session
	if err = json.Unmarshal(raw, &sess); err != nil {
		return model.Session{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if !sess.Valid() {
		return model.Session{}, fmt.Errorf("%w: email or token missing", ErrMalformedState)
	}
	if s.tokens != nil {
		if err = s.tokens.CheckToken(sess.Token); err != nil {
			return model.Session{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
		}
	}
	return sess, nil
}

// Save перезаписывает слот
func (s *Store) Save(ctx context.Context, sess model.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err = s.slot.Store(ctx, raw); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Clear удаляет слот, повторный вызов не ошибка
func (s *Store) Clear(ctx context.Context) error {
	if err := s.slot.Delete(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
