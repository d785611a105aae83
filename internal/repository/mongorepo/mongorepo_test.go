package mongorepo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"plan-it/backend/internal/repository"
)

func TestTranslate(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}
	other := errors.New("network down")

	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments), repository.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("find: %w", mongo.ErrNoDocuments)), repository.ErrNotFound)
	assert.ErrorIs(t, translate(dup), repository.ErrDuplicate)
	assert.Equal(t, other, translate(other))
}
