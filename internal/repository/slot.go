package repository

import (
	"context"
	"errors"
)

var ErrSlotEmpty = errors.New("slot is empty")

// Slot одна именованная ячейка долговременного хранилища, переживает перезапуск клиента.
// Держит максимум одну сериализованную сессию, last-write-wins.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Store(ctx context.Context, payload []byte) error
	// Delete идемпотентен, отсутствие значения не ошибка
	Delete(ctx context.Context) error
}
