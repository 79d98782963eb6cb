package entity

import (
	"context"

	"github.com/arbuzhub/casino-backend/pkg/xcontext"
)

// When this migrator is called, no need to call other migrators.
func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&Account{},
		&Partner{},
		&BetRecord{},
		&Deposit{},
		&Withdrawal{},
		&Voucher{},
		&VoucherActivation{},
		&Lottery{},
		&LotteryPrize{},
		&LotteryTicket{},
		&Duel{},
		&DuelSeat{},
		&OutboxEvent{},
		&Conversation{},
	)
}
