package casedb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "fraud.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenSeedsMockCaseOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fraud.db")

	s1, err := Open(path)
	require.NoError(t, err)
	c, err := s1.CaseByID("CUST_9988")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", c.Name)
	assert.Equal(t, StatusPendingReview, c.Status)
	s1.Close()

	// Reopen must not seed a second row.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	var count int
	require.NoError(t, s2.db.QueryRow(`SELECT count(*) FROM fraud_cases`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCaseByPhoneMatchesInsideCallerIdentity(t *testing.T) {
	s := openTestStore(t)

	c, err := s.CaseByPhone("sip:+15550199@carrier.example.com")
	require.NoError(t, err)
	assert.Equal(t, "CUST_9988", c.CustomerID)

	_, err = s.CaseByPhone("sip:+19998887777@carrier.example.com")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestCaseByNameIsCaseInsensitive(t *testing.T) {
	s := openTestStore(t)

	c, err := s.CaseByName("john doe")
	require.NoError(t, err)
	assert.Equal(t, "CUST_9988", c.CustomerID)

	_, err = s.CaseByName("Jane Roe")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestResolveUpdatesStatusAndAppendsNote(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Resolve("CUST_9988", StatusConfirmedFraud, "Customer denies the charge."))

	c, err := s.CaseByID("CUST_9988")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmedFraud, c.Status)
	assert.Equal(t, "Suspicious login detected. | [Agent]: Customer denies the charge.", c.Notes)
}

func TestResolveIsOneWay(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Resolve("CUST_9988", StatusConfirmedSafe, "Identity verified."))

	err := s.Resolve("CUST_9988", StatusConfirmedFraud, "Second thoughts.")
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	// Notes and status untouched by the rejected attempt.
	c, err := s.CaseByID("CUST_9988")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmedSafe, c.Status)
	assert.NotContains(t, c.Notes, "Second thoughts")
}

func TestResolveRejectsInvalidStatus(t *testing.T) {
	s := openTestStore(t)

	err := s.Resolve("CUST_9988", StatusPendingReview, "back to pending")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	err = s.Resolve("CUST_9988", "escalated", "made-up status")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestResolveUnknownCase(t *testing.T) {
	s := openTestStore(t)
	err := s.Resolve("CUST_0000", StatusConfirmedSafe, "n/a")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}
