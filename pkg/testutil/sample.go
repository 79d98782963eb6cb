package testutil

import (
	"context"
	"reflect"

	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/internal/repository"
	"github.com/google/uuid"
)

// SampleAccount creates an account with randomized identity fields. Non-zero
// fields of init overwrite the sample before it is stored.
func SampleAccount(ctx context.Context, init *entity.Account) (entity.Account, error) {
	accountRepo := repository.NewAccountRepository()

	sample := &entity.Account{
		UserID:       uuid.NewString(),
		Name:         uuid.NewString(),
		ReferralCode: uuid.NewString()[:8],
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := accountRepo.Create(ctx, sample); err != nil {
		return *sample, err
	}
	return *sample, nil
}

func overwriteFields[T any](origin *T, overwrite T) {
	originValue := reflect.ValueOf(origin).Elem()
	overwriteValue := reflect.ValueOf(overwrite)

	for i := 0; i < overwriteValue.NumField(); i++ {
		overwriteField := overwriteValue.Field(i)
		if overwriteField.Interface() != reflect.Zero(overwriteField.Type()).Interface() {
			originValue.Field(i).Set(overwriteField)
		}
	}
}
