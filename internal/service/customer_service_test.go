package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/storefront-backend/internal/errors"
	"github.com/unclebandit/storefront-backend/internal/model"
	"github.com/unclebandit/storefront-backend/internal/payload"
	"github.com/unclebandit/storefront-backend/internal/store"
	"github.com/unclebandit/storefront-backend/internal/store/memory"
)

func body(t *testing.T, js string) payload.Fields {
	t.Helper()
	f, err := payload.Decode(strings.NewReader(js))
	require.NoError(t, err)
	return f
}

func requireKind(t *testing.T, err error, kind appErrors.Kind) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	e, ok := appErrors.As(err)
	require.True(t, ok, "expected *appErrors.Error, got %T", err)
	require.Equal(t, kind, e.Kind, e.Error())
	return e
}

func newCustomerFixture() (*CustomerService, *spyStore[model.Customer], *recordingPublisher) {
	spy := newSpyStore[model.Customer]("customers", memory.Unique("email"))
	pub := &recordingPublisher{}
	return NewCustomerService(spy, pub), spy, pub
}

func TestCreateCustomerAssignsDistinctIDs(t *testing.T) {
	svc, _, pub := newCustomerFixture()
	ctx := context.Background()

	a, err := svc.CreateCustomer(ctx, body(t, `{"name":"Ada","email":"ada@example.com"}`))
	require.NoError(t, err)
	b, err := svc.CreateCustomer(ctx, body(t, `{"name":"Bob","email":"bob@example.com","address":"1 Main St"}`))
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Nil(t, a.Address)
	require.NotNil(t, b.Address)
	assert.Equal(t, []string{"customers.created", "customers.created"}, pub.topics)
}

func TestCreateCustomerIgnoresClientID(t *testing.T) {
	svc, spy, _ := newCustomerFixture()

	c, err := svc.CreateCustomer(context.Background(), body(t, `{"id":"mine","name":"Ada","email":"ada@example.com"}`))
	require.NoError(t, err)
	assert.NotEqual(t, "mine", c.ID)
	assert.NotContains(t, spy.lastValues, "id")
}

func TestCreateCustomerValidatesBeforeStore(t *testing.T) {
	cases := map[string]string{
		"missing email": `{"name":"Ada"}`,
		"empty name":    `{"name":"","email":"ada@example.com"}`,
		"null name":     `{"name":null,"email":"ada@example.com"}`,
		"numeric name":  `{"name":5,"email":"ada@example.com"}`,
		"empty body":    ``,
	}
	for name, js := range cases {
		t.Run(name, func(t *testing.T) {
			svc, spy, pub := newCustomerFixture()
			_, err := svc.CreateCustomer(context.Background(), body(t, js))
			e := requireKind(t, err, appErrors.KindValidation)
			assert.NotEmpty(t, e.Fields)
			assert.Zero(t, spy.calls())
			assert.Empty(t, pub.topics)
		})
	}
}

func TestCreateCustomerDuplicateEmail(t *testing.T) {
	svc, _, _ := newCustomerFixture()
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, body(t, `{"name":"Ada","email":"dup@example.com"}`))
	require.NoError(t, err)

	_, err = svc.CreateCustomer(ctx, body(t, `{"name":"Eve","email":"dup@example.com"}`))
	e := requireKind(t, err, appErrors.KindConflict)
	assert.Equal(t, "email already exists", e.Message)
}

func TestGetCustomerIsIdempotent(t *testing.T) {
	svc, _, _ := newCustomerFixture()
	ctx := context.Background()

	c, err := svc.CreateCustomer(ctx, body(t, `{"name":"Ada","email":"ada@example.com"}`))
	require.NoError(t, err)

	first, err := svc.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	second, err := svc.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetCustomerNotFoundIsCanonical(t *testing.T) {
	svc, _, _ := newCustomerFixture()
	_, err := svc.GetCustomer(context.Background(), "missing")
	e := requireKind(t, err, appErrors.KindNotFound)
	assert.Equal(t, "customer not found", e.Message)
}

func TestListCustomersEmpty(t *testing.T) {
	svc, _, _ := newCustomerFixture()
	got, err := svc.ListCustomers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUpdateCustomerEmptyBodyNeverReachesStore(t *testing.T) {
	svc, spy, _ := newCustomerFixture()

	for _, js := range []string{`{}`, ``, `{"unknown":1}`} {
		_, err := svc.UpdateCustomer(context.Background(), "c1", body(t, js))
		requireKind(t, err, appErrors.KindValidation)
	}
	assert.Zero(t, spy.calls())
}

func TestUpdateCustomerRejectsEmptyName(t *testing.T) {
	svc, spy, _ := newCustomerFixture()
	_, err := svc.UpdateCustomer(context.Background(), "c1", body(t, `{"name":""}`))
	e := requireKind(t, err, appErrors.KindValidation)
	assert.Equal(t, "must not be empty", e.Fields["name"])
	assert.Zero(t, spy.calls())
}

func TestUpdateCustomerPartial(t *testing.T) {
	svc, spy, pub := newCustomerFixture()
	ctx := context.Background()

	c, err := svc.CreateCustomer(ctx, body(t, `{"name":"Ada","email":"ada@example.com","address":"1 Main St"}`))
	require.NoError(t, err)

	got, err := svc.UpdateCustomer(ctx, c.ID, body(t, `{"name":"Ada L."}`))
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)
	require.NotNil(t, got.Address)
	assert.Equal(t, store.Values{"name": "Ada L."}, spy.lastValues)

	got, err = svc.UpdateCustomer(ctx, c.ID, body(t, `{"address":null}`))
	require.NoError(t, err)
	assert.Nil(t, got.Address)
	assert.Contains(t, pub.topics, "customers.updated")
}

func TestUpdateCustomerMissing(t *testing.T) {
	svc, spy, _ := newCustomerFixture()
	_, err := svc.UpdateCustomer(context.Background(), "missing", body(t, `{"name":"x"}`))
	e := requireKind(t, err, appErrors.KindNotFound)
	assert.Equal(t, "customer not found", e.Message)
	assert.Equal(t, 1, spy.updateCalls)
}

func TestUpdateCustomerIntegrityViolation(t *testing.T) {
	svc, spy, pub := newCustomerFixture()
	spy.mutation = &store.Mutation[model.Customer]{
		Affected: 2,
		Records:  []model.Customer{{ID: "a"}, {ID: "b"}},
	}

	_, err := svc.UpdateCustomer(context.Background(), "a", body(t, `{"name":"x"}`))
	requireKind(t, err, appErrors.KindIntegrity)
	assert.Empty(t, pub.topics)
}

func TestDeleteCustomer(t *testing.T) {
	svc, _, pub := newCustomerFixture()
	ctx := context.Background()

	c, err := svc.CreateCustomer(ctx, body(t, `{"name":"Ada","email":"ada@example.com"}`))
	require.NoError(t, err)

	deleted, err := svc.DeleteCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, deleted.ID)
	assert.Contains(t, pub.topics, "customers.deleted")

	_, err = svc.DeleteCustomer(ctx, c.ID)
	requireKind(t, err, appErrors.KindNotFound)
}

func TestStoreFailurePassesThrough(t *testing.T) {
	svc, spy, _ := newCustomerFixture()
	spy.err = appErrors.NewStore("select customers", errors.New("connection refused"))

	_, err := svc.ListCustomers(context.Background())
	requireKind(t, err, appErrors.KindStore)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	spy := newSpyStore[model.Customer]("customers")
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewCustomerService(spy, pub)

	_, err := svc.CreateCustomer(context.Background(), body(t, `{"name":"Ada","email":"ada@example.com"}`))
	assert.NoError(t, err)
	assert.Len(t, pub.topics, 1)
}

func TestNilPublisher(t *testing.T) {
	svc := NewCustomerService(newSpyStore[model.Customer]("customers"), nil)
	_, err := svc.CreateCustomer(context.Background(), body(t, `{"name":"Ada","email":"ada@example.com"}`))
	assert.NoError(t, err)
}
