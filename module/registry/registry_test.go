package registry

import (
	"context"
	"testing"

	"github.com/abhissng/chargehub/ocpp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	calls []string
}

func (f *fakeAPI) Reset(_ context.Context, call Call, req *ocpp.ResetRequest) (*ocpp.MessageConfirmation, error) {
	f.calls = append(f.calls, "reset:"+call.Identifier+":"+req.Type)
	return ocpp.Confirmed(nil), nil
}

func (f *fakeAPI) ResetAgain(_ context.Context, _ Call, _ *ocpp.ResetRequest) (*ocpp.MessageConfirmation, error) {
	f.calls = append(f.calls, "again")
	return ocpp.Confirmed(nil), nil
}

type idQuery struct {
	ID string `json:"id"`
}

func (f *fakeAPI) GetTransaction(_ context.Context, q *idQuery, _ *None) (any, error) {
	f.calls = append(f.calls, "get:"+q.ID)
	return q.ID, nil
}

func TestDuplicateActionKeepsFirst(t *testing.T) {
	table := New[*fakeAPI]("fake")
	require.NoError(t, table.Expose(Action(ocpp.Reset, (*fakeAPI).Reset)))

	err := table.Expose(Action(ocpp.Reset, (*fakeAPI).ResetAgain))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateBinding)

	actions := table.Actions()
	require.Len(t, actions, 1)

	api := &fakeAPI{}
	_, err = actions[0].Invoke(api, context.Background(), Call{Identifier: "cs-1"}, &ocpp.ResetRequest{Type: "Immediate"})
	require.NoError(t, err)
	assert.Equal(t, []string{"reset:cs-1:Immediate"}, api.calls)
}

func TestDuplicateDataBinding(t *testing.T) {
	table := New[*fakeAPI]("fake")
	table.MustExposeData(Data(ocpp.TransactionNamespace, ocpp.Get, (*fakeAPI).GetTransaction))
	assert.ErrorIs(t, table.ExposeData(Data(ocpp.TransactionNamespace, ocpp.Get, (*fakeAPI).GetTransaction)), ErrDuplicateBinding)
	assert.NoError(t, table.ExposeData(Data(ocpp.TransactionNamespace, ocpp.Delete, (*fakeAPI).GetTransaction)))

	assert.Panics(t, func() {
		table.MustExposeData(Data(ocpp.TransactionNamespace, ocpp.Delete, (*fakeAPI).GetTransaction))
	})
}

func TestOrderIsDeterministic(t *testing.T) {
	a := New[*fakeAPI]("a").MustExpose(
		Action(ocpp.Reset, (*fakeAPI).Reset),
		Action(ocpp.ChangeAvailability, (*fakeAPI).Reset),
		Action(ocpp.GetLog, (*fakeAPI).Reset),
	)
	b := New[*fakeAPI]("b").MustExpose(
		Action(ocpp.GetLog, (*fakeAPI).Reset),
		Action(ocpp.Reset, (*fakeAPI).Reset),
		Action(ocpp.ChangeAvailability, (*fakeAPI).Reset),
	)
	want := []ocpp.CallAction{ocpp.ChangeAvailability, ocpp.GetLog, ocpp.Reset}
	assert.Equal(t, want, a.ActionNames())
	assert.Equal(t, want, b.ActionNames())
}

func TestEmptyAndNilTables(t *testing.T) {
	var nilTable *Table[*fakeAPI]
	assert.Empty(t, nilTable.Actions())
	assert.Empty(t, nilTable.DataBindings())
	assert.Empty(t, New[*fakeAPI]("empty").Actions())
}

func TestDataHelperSchemas(t *testing.T) {
	b := Data(ocpp.TransactionNamespace, ocpp.Get, (*fakeAPI).GetTransaction)
	require.NotNil(t, b.QuerySchema)
	assert.IsType(t, &idQuery{}, b.QuerySchema())
	assert.Nil(t, b.BodySchema)

	api := &fakeAPI{}
	out, err := b.Invoke(api, context.Background(), &idQuery{ID: "tx-1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "tx-1", out)

	_, err = b.Invoke(api, context.Background(), &ocpp.ResetRequest{}, nil)
	assert.Error(t, err)
}

func TestActionRejectsWrongPayload(t *testing.T) {
	b := Action(ocpp.Reset, (*fakeAPI).Reset)
	assert.IsType(t, &ocpp.ResetRequest{}, b.Schema())
	_, err := b.Invoke(&fakeAPI{}, context.Background(), Call{}, &idQuery{})
	assert.Error(t, err)
}
