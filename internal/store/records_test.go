package store

import (
	"testing"
	"time"

	"calorie_tracker/internal/domain"
	"calorie_tracker/internal/nutritionix"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRecords(t *testing.T, foods map[string]nutritionix.Food) (*Records, func(username string, role domain.Role, expected int) *domain.User) {
	db := testDB(t)
	records := NewRecords(db, fakeLookup{foods: foods})
	newUser := func(username string, role domain.Role, expected int) *domain.User {
		return mustUser(t, db, username, role, expected)
	}
	return records, newUser
}

func TestCreateComputesBelowExpectedSnapshot(t *testing.T) {
	records, newUser := newRecords(t, nil)
	bob := newUser("bob", domain.RoleUser, 2000)

	// First entry of the day: 80 < 2000
	first, err := records.Create(bob, NewEntry{Text: "egg", Calories: intp(80)})
	require.NoError(t, err)
	assert.True(t, first.IsBelowExpected)
	assert.Equal(t, time.Now().Format(domain.DateLayout), first.Date)

	// Second entry pushes the daily total to the target: 80+1920 == 2000,
	// equality counts as NOT below
	second, err := records.Create(bob, NewEntry{Text: "feast", Calories: intp(1920)})
	require.NoError(t, err)
	assert.False(t, second.IsBelowExpected)

	// The earlier entry keeps its snapshot, no retroactive correction
	got, err := records.Get(bob, first.ID)
	require.NoError(t, err)
	assert.True(t, got.IsBelowExpected)
}

func TestCreateSeparateDaysSumIndependently(t *testing.T) {
	records, newUser := newRecords(t, nil)
	admin := newUser("root", domain.RoleAdmin, 2000)
	bob := newUser("bob", domain.RoleUser, 100)

	// Admin backfills a huge entry for yesterday on bob's behalf
	_, err := records.Create(admin, NewEntry{OwnerID: bob.ID, Text: "cake", Calories: intp(5000), Date: "2026-08-30", Time: "20:00:00"})
	require.NoError(t, err)

	// Today starts from zero again
	entry, err := records.Create(bob, NewEntry{Text: "egg", Calories: intp(80)})
	require.NoError(t, err)
	assert.True(t, entry.IsBelowExpected)
}

func TestCreateResolvesCaloriesViaLookup(t *testing.T) {
	records, newUser := newRecords(t, map[string]nutritionix.Food{
		"banana": {Name: "Banana, raw", Calories: 105},
	})
	bob := newUser("bob", domain.RoleUser, 2000)

	entry, err := records.Create(bob, NewEntry{Text: "banana"})
	require.NoError(t, err)
	assert.Equal(t, "Banana, raw", entry.Text, "canonical name replaces the submitted text")
	assert.Equal(t, 105, entry.Calories)

	// Unresolvable food creates nothing
	_, err = records.Create(bob, NewEntry{Text: "unobtainium"})
	assert.ErrorIs(t, err, ErrUnresolvedFood)
	listing, err := records.List(bob, 0, EntryFilter{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, listing.Total)
}

func TestCreateValidation(t *testing.T) {
	records, newUser := newRecords(t, nil)
	bob := newUser("bob", domain.RoleUser, 2000)
	admin := newUser("root", domain.RoleAdmin, 2000)
	manager := newUser("mgr", domain.RoleManager, 2000)

	_, err := records.Create(bob, NewEntry{Text: ""})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = records.Create(bob, NewEntry{Text: "egg", Calories: intp(-1)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = records.Create(admin, NewEntry{Text: "egg", Calories: intp(80), Date: "31-08-2026"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = records.Create(admin, NewEntry{Text: "egg", Calories: intp(80), Time: "9am"})
	assert.ErrorIs(t, err, ErrValidation)

	// Users may not attribute entries to others, managers have no access
	_, err = records.Create(bob, NewEntry{OwnerID: admin.ID, Text: "egg", Calories: intp(80)})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = records.Create(manager, NewEntry{Text: "egg", Calories: intp(80)})
	assert.ErrorIs(t, err, ErrForbidden)

	// Admin attribution to a missing owner
	_, err = records.Create(admin, NewEntry{OwnerID: 999, Text: "egg", Calories: intp(80)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersAndScoping(t *testing.T) {
	records, newUser := newRecords(t, nil)
	bob := newUser("bob", domain.RoleUser, 2000)
	alice := newUser("alice", domain.RoleUser, 2000)
	admin := newUser("root", domain.RoleAdmin, 2000)

	seed := []NewEntry{
		{Text: "Egg sandwich", Calories: intp(350), Date: "2026-08-30", Time: "08:00:00"},
		{Text: "Greek salad", Calories: intp(200), Date: "2026-08-30", Time: "13:00:00"},
		{Text: "Pizza slice", Calories: intp(600), Date: "2026-08-31", Time: "19:30:00"},
	}
	for _, e := range seed {
		e.OwnerID = bob.ID
		_, err := records.Create(admin, e)
		require.NoError(t, err)
	}
	_, err := records.Create(admin, NewEntry{OwnerID: alice.ID, Text: "Ramen", Calories: intp(450), Date: "2026-08-31", Time: "12:00:00"})
	require.NoError(t, err)

	// A user only ever sees their own entries, owner override ignored
	listing, err := records.List(bob, alice.ID, EntryFilter{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, listing.Total)
	for _, e := range listing.Entries {
		assert.Equal(t, bob.ID, e.UserID)
	}

	// Exact date filter
	listing, err = records.List(bob, 0, EntryFilter{Date: "2026-08-30"}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, listing.Total)

	// Case-insensitive substring on text
	listing, err = records.List(bob, 0, EntryFilter{Text: "SALAD"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, listing.Entries, 1)
	assert.Equal(t, "Greek salad", listing.Entries[0].Text)

	// Calories range is inclusive on both ends
	listing, err = records.List(bob, 0, EntryFilter{MinCalories: intp(200), MaxCalories: intp(350)}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, listing.Total)

	// Admin picks an arbitrary owner
	listing, err = records.List(admin, alice.ID, EntryFilter{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, listing.Total)
	assert.Equal(t, alice.ID, listing.OwnerID)

	// Managers have no record access
	manager := newUser("mgr", domain.RoleManager, 2000)
	_, err = records.List(manager, 0, EntryFilter{}, 1, 10)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListPaginationReconstructsSet(t *testing.T) {
	records, newUser := newRecords(t, nil)
	admin := newUser("root", domain.RoleAdmin, 2000)
	bob := newUser("bob", domain.RoleUser, 100000)

	const n = 7
	for i := 0; i < n; i++ {
		_, err := records.Create(admin, NewEntry{OwnerID: bob.ID, Text: "meal", Calories: intp(100 + i), Date: "2026-08-31", Time: "12:00:00"})
		require.NoError(t, err)
	}

	const limit = 3
	seen := map[uint]bool{}
	for page := 1; page <= (n+limit-1)/limit; page++ {
		listing, err := records.List(bob, 0, EntryFilter{}, page, limit)
		require.NoError(t, err)
		assert.EqualValues(t, n, listing.Total, "total holds the full filtered count on every page")
		for _, e := range listing.Entries {
			assert.False(t, seen[e.ID], "no duplicates across pages")
			seen[e.ID] = true
		}
	}
	assert.Len(t, seen, n, "concatenated pages reproduce the full set")
}

func TestListAllGroupsPerNonManagerUser(t *testing.T) {
	records, newUser := newRecords(t, nil)
	admin := newUser("root", domain.RoleAdmin, 2000)
	bob := newUser("bob", domain.RoleUser, 2000)
	newUser("mgr", domain.RoleManager, 2000)

	_, err := records.Create(admin, NewEntry{OwnerID: bob.ID, Text: "egg", Calories: intp(80)})
	require.NoError(t, err)

	listings, err := records.ListAll(admin, EntryFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, listings, 2, "managers are excluded from the bulk view")
	names := []string{listings[0].Username, listings[1].Username}
	assert.ElementsMatch(t, []string{"root", "bob"}, names)

	// Only admins get the bulk view
	_, err = records.ListAll(bob, EntryFilter{}, 1, 10)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateKeepsSnapshotAndChecksOwnership(t *testing.T) {
	records, newUser := newRecords(t, nil)
	bob := newUser("bob", domain.RoleUser, 2000)
	alice := newUser("alice", domain.RoleUser, 2000)
	admin := newUser("root", domain.RoleAdmin, 2000)

	entry, err := records.Create(bob, NewEntry{Text: "egg", Calories: intp(80)})
	require.NoError(t, err)
	require.True(t, entry.IsBelowExpected)

	// Partial update: only provided fields change, flag stays put
	updated, err := records.Update(bob, entry.ID, EntryUpdate{Calories: intp(99999)})
	require.NoError(t, err)
	assert.Equal(t, 99999, updated.Calories)
	assert.Equal(t, "egg", updated.Text)
	assert.True(t, updated.IsBelowExpected, "snapshot is never recomputed")

	updated, err = records.Update(admin, entry.ID, EntryUpdate{Text: strp("boiled egg")})
	require.NoError(t, err)
	assert.Equal(t, "boiled egg", updated.Text)

	// Non-owner non-admin is rejected, missing entry is not found
	_, err = records.Update(alice, entry.ID, EntryUpdate{Text: strp("mine now")})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = records.Update(bob, 9999, EntryUpdate{Text: strp("ghost")})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = records.Update(bob, entry.ID, EntryUpdate{Calories: intp(-5)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteEntry(t *testing.T) {
	records, newUser := newRecords(t, nil)
	bob := newUser("bob", domain.RoleUser, 2000)
	alice := newUser("alice", domain.RoleUser, 2000)
	admin := newUser("root", domain.RoleAdmin, 2000)

	entry, err := records.Create(bob, NewEntry{Text: "egg", Calories: intp(80)})
	require.NoError(t, err)

	assert.ErrorIs(t, records.Delete(alice, entry.ID), ErrForbidden)
	require.NoError(t, records.Delete(bob, entry.ID))
	assert.ErrorIs(t, records.Delete(bob, entry.ID), ErrNotFound)

	// Admin deletes anyone's entry
	entry, err = records.Create(bob, NewEntry{Text: "toast", Calories: intp(120)})
	require.NoError(t, err)
	require.NoError(t, records.Delete(admin, entry.ID))
}

func TestDailyTotal(t *testing.T) {
	records, newUser := newRecords(t, nil)
	bob := newUser("bob", domain.RoleUser, 2000)

	total, err := DailyTotal(recordsDB(records), bob.ID, "2026-08-31")
	require.NoError(t, err)
	assert.Zero(t, total, "no entries sum to zero")

	for _, cal := range []int{100, 250} {
		_, err := records.Create(bob, NewEntry{Text: "meal", Calories: intp(cal), Date: "2026-08-31", Time: "12:00:00"})
		require.NoError(t, err)
	}
	total, err = DailyTotal(recordsDB(records), bob.ID, "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, 350, total)
}

// recordsDB exposes the store's handle to the aggregation helper
func recordsDB(r *Records) *gorm.DB { return r.db }
