package ledger

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/gateway"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/testkit"
)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	sim      *gateway.Simulator
	client   *models.Client
	talent   *models.Talent
	contract *models.Contract
}

func setup(t *testing.T) fixture {
	t.Helper()
	gdb := testkit.OpenDB(t)
	sim := gateway.NewSimulator("test-secret")
	client := testkit.CreateClient(t, gdb, "Acme")
	talent := testkit.CreateTalent(t, gdb, "Ada")
	job := testkit.CreateJob(t, gdb, client.ID, "25")
	return fixture{
		db:       gdb,
		svc:      NewService(gdb, sim),
		sim:      sim,
		client:   client,
		talent:   talent,
		contract: testkit.CreateContract(t, gdb, job, talent.ID, "22"),
	}
}

func (f fixture) totals(t *testing.T) (earned, spent decimal.Decimal) {
	t.Helper()
	var tl models.Talent
	require.NoError(t, f.db.First(&tl, "id = ?", f.talent.ID).Error)
	var cl models.Client
	require.NoError(t, f.db.First(&cl, "id = ?", f.client.ID).Error)
	return tl.TotalEarnings, cl.TotalSpent
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProcessPaymentBreakdown(t *testing.T) {
	f := setup(t)

	res, err := f.svc.ProcessPayment(context.Background(), testkit.ClientActor(f.client), PaymentInput{
		ContractID:    f.contract.ID,
		Amount:        money("100"),
		Tip:           money("10"),
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	b := res.Breakdown
	assert.True(t, b.Commission.Equal(money("15")), "commission %s", b.Commission)
	assert.True(t, b.ClientPays.Equal(money("110")))
	assert.True(t, b.TalentReceives.Equal(money("95")))

	p := res.Payment
	assert.True(t, p.TotalPaid.Equal(money("110")))
	assert.Regexp(t, `^TXN-\d+-[0-9a-z]{9}$`, p.TransactionRef)
	require.NotNil(t, p.Earning)
	assert.True(t, p.Earning.Amount.Equal(money("85")))
	assert.True(t, p.Earning.Tip.Equal(money("10")))

	var receipt gateway.Receipt
	require.NoError(t, json.Unmarshal(p.GatewayReceipt, &receipt))
	assert.Equal(t, p.TransactionRef, receipt.Reference)
	assert.Equal(t, "110.00", receipt.Amount)
	assert.True(t, f.sim.VerifyReceipt(receipt))

	earned, spent := f.totals(t)
	assert.True(t, earned.Equal(money("95")), "earned %s", earned)
	assert.True(t, spent.Equal(money("110")), "spent %s", spent)

	var stored models.Payment
	require.NoError(t, f.db.Preload("Earning").First(&stored, "id = ?", p.ID).Error)
	assert.True(t, stored.Commission.Equal(money("15")))
	assert.Equal(t, f.talent.ID, stored.Earning.TalentID)
}

func TestPaymentsAccumulate(t *testing.T) {
	f := setup(t)
	actor := testkit.ClientActor(f.client)

	for _, amt := range []string{"40", "60.50"} {
		_, err := f.svc.ProcessPayment(context.Background(), actor, PaymentInput{
			ContractID: f.contract.ID, Amount: money(amt),
		})
		require.NoError(t, err)
	}

	earned, spent := f.totals(t)
	// 40 - 6 + 60.50 - 9.08
	assert.True(t, earned.Equal(money("85.42")), "earned %s", earned)
	assert.True(t, spent.Equal(money("100.5")), "spent %s", spent)
}

func TestProcessPaymentValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	actor := testkit.ClientActor(f.client)

	_, err := f.svc.ProcessPayment(ctx, actor, PaymentInput{ContractID: f.contract.ID, Amount: decimal.Zero})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.ProcessPayment(ctx, actor, PaymentInput{ContractID: f.contract.ID, Amount: money("10"), Tip: money("-1")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.ProcessPayment(ctx, actor, PaymentInput{ContractID: f.contract.ID, Amount: money("10"), PaymentMethod: "paypal"})
	assert.Contains(t, apperr.Fields(err), "paymentMethod")

	_, err = f.svc.ProcessPayment(ctx, actor, PaymentInput{ContractID: uuid.New(), Amount: money("10")})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Contract not found", err.Error())

	stranger := testkit.CreateClient(t, f.db, "Stranger")
	_, err = f.svc.ProcessPayment(ctx, testkit.ClientActor(stranger), PaymentInput{ContractID: f.contract.ID, Amount: money("10")})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	earned, spent := f.totals(t)
	assert.True(t, earned.IsZero())
	assert.True(t, spent.IsZero())
}

func TestAddTipIncrementsExactly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	actor := testkit.ClientActor(f.client)

	res, err := f.svc.ProcessPayment(ctx, actor, PaymentInput{ContractID: f.contract.ID, Amount: money("100")})
	require.NoError(t, err)
	earnedBefore, spentBefore := f.totals(t)

	p, err := f.svc.AddTip(ctx, actor, res.Payment.ID, money("7.25"))
	require.NoError(t, err)

	assert.True(t, p.Tip.Equal(money("7.25")))
	assert.True(t, p.TotalPaid.Equal(res.Payment.TotalPaid.Add(money("7.25"))), "total %s", p.TotalPaid)
	assert.True(t, p.Amount.Equal(money("100")))
	assert.True(t, p.Commission.Equal(money("15")))
	require.NotNil(t, p.Earning)
	assert.True(t, p.Earning.Tip.Equal(money("7.25")))

	earned, spent := f.totals(t)
	assert.True(t, earned.Sub(earnedBefore).Equal(money("7.25")), "earned delta %s", earned.Sub(earnedBefore))
	assert.True(t, spent.Sub(spentBefore).Equal(money("7.25")))
}

func TestAddTipErrors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	actor := testkit.ClientActor(f.client)

	_, err := f.svc.AddTip(ctx, actor, uuid.Nil, money("5"))
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Missing required fields", err.Error())

	_, err = f.svc.AddTip(ctx, actor, uuid.New(), money("-5"))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.AddTip(ctx, actor, uuid.New(), money("5"))
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Payment not found", err.Error())

	res, err := f.svc.ProcessPayment(ctx, actor, PaymentInput{ContractID: f.contract.ID, Amount: money("10")})
	require.NoError(t, err)
	_, err = f.svc.AddTip(ctx, testkit.TalentActor(f.talent), res.Payment.ID, money("5"))
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestSplitHoldsSumIdentity(t *testing.T) {
	for _, a := range []string{"0.01", "0.03", "19.99", "22", "1000000"} {
		b := Split(money(a), money("3.33"))
		assert.True(t, b.TalentReceives.Add(b.Commission).Equal(b.ClientPays), a)
	}
}

func TestSubCentAmountsRejected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	actor := testkit.ClientActor(f.client)

	_, err := f.svc.ProcessPayment(ctx, actor, PaymentInput{ContractID: f.contract.ID, Amount: money("0.004"), Tip: money("0.004")})
	require.ErrorIs(t, err, apperr.ErrValidation)
	fields := apperr.Fields(err)
	assert.Contains(t, fields, "amount")
	assert.Contains(t, fields, "tip")

	var n int64
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&n).Error)
	assert.Zero(t, n)

	res, err := f.svc.ProcessPayment(ctx, actor, PaymentInput{ContractID: f.contract.ID, Amount: money("10.50")})
	require.NoError(t, err)
	_, err = f.svc.AddTip(ctx, actor, res.Payment.ID, money("1.005"))
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, apperr.Fields(err), "tip")

	earned, spent := f.totals(t)
	assert.True(t, spent.Equal(res.Payment.TotalPaid), "spent %s", spent)
	assert.True(t, earned.Equal(res.Breakdown.TalentReceives), "earned %s", earned)
}
