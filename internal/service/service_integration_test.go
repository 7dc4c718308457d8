//go:build integration

package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/burgasvv/parking-service/internal/apperr"
	"github.com/burgasvv/parking-service/internal/cache"
	"github.com/burgasvv/parking-service/internal/event"
	"github.com/burgasvv/parking-service/internal/model"
	"github.com/burgasvv/parking-service/internal/repository"
	"github.com/burgasvv/parking-service/internal/testutil"
)

type testEnv struct {
	ctx       context.Context
	repo      *repository.Repository
	cache     *cache.Cache
	identity  *IdentityService
	cars      *CarService
	addresses *AddressService
	parkings  *ParkingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	cacheClient, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = cacheClient.Close()
	})

	if err := testutil.FlushRedis(ctx, cacheClient.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	invalidator := cache.NewInvalidator(cacheClient, logger)
	events := event.NewPublisher(cacheClient.Client(), logger)

	return &testEnv{
		ctx:       ctx,
		repo:      repo,
		cache:     cacheClient,
		identity:  NewIdentityService(repo, cacheClient, invalidator, events, logger),
		cars:      NewCarService(repo, cacheClient, invalidator, events, logger),
		addresses: NewAddressService(repo, invalidator, logger),
		parkings:  NewParkingService(repo, cacheClient, invalidator, events, logger),
	}
}

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }

func (e *testEnv) createIdentity(t *testing.T) *model.IdentityFull {
	t.Helper()
	authority := model.AuthorityUser
	email := testutil.UniqueEmail("svc")
	full, err := e.identity.Create(e.ctx, model.IdentityDraft{
		Authority:  &authority,
		Username:   strPtr("user-" + email),
		Password:   strPtr("password"),
		Email:      &email,
		Firstname:  strPtr("Test"),
		Lastname:   strPtr("User"),
		Patronymic: strPtr("T"),
	})
	if err != nil {
		t.Fatalf("create identity: %v", err)
	}
	return full
}

func (e *testEnv) createCar(t *testing.T, ownerID uuid.UUID) *model.CarFull {
	t.Helper()
	car := testutil.NewTestCar(t, ownerID)
	full, err := e.cars.Create(e.ctx, model.CarDraft{
		Brand:       &car.Brand,
		Model:       &car.Model,
		Description: &car.Description,
		IdentityID:  &ownerID,
	})
	if err != nil {
		t.Fatalf("create car: %v", err)
	}
	return full
}

func (e *testEnv) createParking(t *testing.T) *model.ParkingFull {
	t.Helper()
	address := testutil.NewTestAddress(t)
	full, err := e.parkings.Create(e.ctx, model.ParkingDraft{
		Address: &model.AddressDraft{
			City:   &address.City,
			Street: &address.Street,
			House:  &address.House,
		},
		Price: floatPtr(100),
	})
	if err != nil {
		t.Fatalf("create parking: %v", err)
	}
	return full
}

// ============================================================================
// Cache coherence
// ============================================================================

func TestIntegrationCacheCoherence_IdentityUpdate(t *testing.T) {
	env := newTestEnv(t)

	created := env.createIdentity(t)

	// Populate the cache.
	before, err := env.identity.FindByID(env.ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if _, err := env.cache.Get(env.ctx, cache.IdentityKey(created.ID)); err != nil {
		t.Fatalf("cache should hold the projection: %v", err)
	}

	if _, err := env.identity.Update(env.ctx, created.ID, model.IdentityDraft{
		Username: strPtr("renamed-" + created.Username),
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	after, err := env.identity.FindByID(env.ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID after update failed: %v", err)
	}
	if after.Username == before.Username {
		t.Error("read after update returned the stale projection")
	}
}

func TestIntegrationCacheCoherence_CarSeesUpdatedOwner(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createIdentity(t)
	car := env.createCar(t, owner.ID)

	// Cache the car's full projection, which embeds the owner.
	if _, err := env.cars.FindByID(env.ctx, car.ID); err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}

	newEmail := testutil.UniqueEmail("renamed")
	if _, err := env.identity.Update(env.ctx, owner.ID, model.IdentityDraft{
		Email: &newEmail,
	}); err != nil {
		t.Fatalf("owner update failed: %v", err)
	}

	after, err := env.cars.FindByID(env.ctx, car.ID)
	if err != nil {
		t.Fatalf("FindByID after owner update failed: %v", err)
	}
	if after.Identity.Email != newEmail {
		t.Errorf("car projection kept the stale owner email %q", after.Identity.Email)
	}
}

func TestIntegrationCacheCoherence_CarSeesUpdatedAddress(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createIdentity(t)
	car := env.createCar(t, owner.ID)
	parking := env.createParking(t)

	pair := []model.ParkingCarPair{{ParkingID: parking.ID, CarID: car.ID}}
	if err := env.parkings.AddCars(env.ctx, pair); err != nil {
		t.Fatalf("AddCars failed: %v", err)
	}

	// Cache the car's full projection, which embeds parkings with addresses.
	if _, err := env.cars.FindByID(env.ctx, car.ID); err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}

	if _, err := env.addresses.Update(env.ctx, parking.Address.ID, model.AddressDraft{
		City: strPtr("Tomsk"),
	}); err != nil {
		t.Fatalf("address update failed: %v", err)
	}

	after, err := env.cars.FindByID(env.ctx, car.ID)
	if err != nil {
		t.Fatalf("FindByID after address update failed: %v", err)
	}
	if len(after.Parkings) != 1 || after.Parkings[0].Address == nil {
		t.Fatalf("car projection lost its parking: %+v", after.Parkings)
	}
	if after.Parkings[0].Address.City != "Tomsk" {
		t.Errorf("car projection kept the stale city %q", after.Parkings[0].Address.City)
	}
}

func TestIntegrationInvalidation_Idempotent(t *testing.T) {
	env := newTestEnv(t)

	created := env.createIdentity(t)

	// Two consecutive mutations without an intermediate read: the second
	// invalidation deletes keys that are already gone.
	if _, err := env.identity.Update(env.ctx, created.ID, model.IdentityDraft{
		Firstname: strPtr("First"),
	}); err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	if _, err := env.identity.Update(env.ctx, created.ID, model.IdentityDraft{
		Firstname: strPtr("Second"),
	}); err != nil {
		t.Fatalf("second update failed: %v", err)
	}

	after, err := env.identity.FindByID(env.ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if after.Firstname != "Second" {
		t.Errorf("expected the last write, got %q", after.Firstname)
	}
}

// ============================================================================
// Association semantics
// ============================================================================

func TestIntegrationAssociation_SetSemantics(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createIdentity(t)
	car := env.createCar(t, owner.ID)
	parking := env.createParking(t)

	pair := []model.ParkingCarPair{{ParkingID: parking.ID, CarID: car.ID}}

	if err := env.parkings.AddCars(env.ctx, pair); err != nil {
		t.Fatalf("first AddCars failed: %v", err)
	}
	// Duplicate add is a no-op.
	if err := env.parkings.AddCars(env.ctx, pair); err != nil {
		t.Fatalf("duplicate AddCars failed: %v", err)
	}

	count, err := env.repo.CountAssignments(env.ctx, parking.ID)
	if err != nil {
		t.Fatalf("CountAssignments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 assignment, got %d", count)
	}

	if err := env.parkings.RemoveCars(env.ctx, pair); err != nil {
		t.Fatalf("RemoveCars failed: %v", err)
	}
	// Removing an absent pair is a no-op.
	if err := env.parkings.RemoveCars(env.ctx, pair); err != nil {
		t.Fatalf("second RemoveCars failed: %v", err)
	}

	count, err = env.repo.CountAssignments(env.ctx, parking.ID)
	if err != nil {
		t.Fatalf("CountAssignments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 assignments, got %d", count)
	}
}

func TestIntegrationAssociation_UnknownTargets(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createIdentity(t)
	car := env.createCar(t, owner.ID)
	parking := env.createParking(t)

	err := env.parkings.AddCars(env.ctx, []model.ParkingCarPair{
		{ParkingID: uuid.New(), CarID: car.ID},
	})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("unknown parking should be NotFound, got %v", err)
	}

	err = env.parkings.AddCars(env.ctx, []model.ParkingCarPair{
		{ParkingID: parking.ID, CarID: uuid.New()},
	})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("unknown car should be NotFound, got %v", err)
	}
}

func TestIntegrationAssociation_ConcurrentAddCars(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createIdentity(t)
	parking := env.createParking(t)

	const workers = 8
	cars := make([]*model.CarFull, workers)
	for i := range cars {
		cars[i] = env.createCar(t, owner.ID)
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = env.parkings.AddCars(env.ctx, []model.ParkingCarPair{
				{ParkingID: parking.ID, CarID: cars[i].ID},
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d AddCars failed: %v", i, err)
		}
	}

	count, err := env.repo.CountAssignments(env.ctx, parking.ID)
	if err != nil {
		t.Fatalf("CountAssignments failed: %v", err)
	}
	if count != workers {
		t.Errorf("lost update: expected %d assignments, got %d", workers, count)
	}

	full, err := env.parkings.FindByID(env.ctx, parking.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if len(full.Cars) != workers {
		t.Errorf("projection lost cars: expected %d, got %d", workers, len(full.Cars))
	}
}

// ============================================================================
// Deletes and cascades
// ============================================================================

func TestIntegrationIdentityDelete_CascadesCars(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createIdentity(t)
	car := env.createCar(t, owner.ID)

	// Populate the car's cache entry so the cascade must clear it.
	if _, err := env.cars.FindByID(env.ctx, car.ID); err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}

	if err := env.identity.Delete(env.ctx, owner.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := env.cars.FindByID(env.ctx, car.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("cascaded car should be NotFound, got %v", err)
	}
	if _, err := env.cache.Get(env.ctx, cache.CarKey(car.ID)); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("cascaded car's cache entry should be gone, got %v", err)
	}
}

func TestIntegrationAddressDelete_ParkingKeepsExisting(t *testing.T) {
	env := newTestEnv(t)

	parking := env.createParking(t)

	if err := env.addresses.Delete(env.ctx, parking.Address.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	after, err := env.parkings.FindByID(env.ctx, parking.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if after.Address != nil {
		t.Errorf("parking should have a cleared address, got %+v", after.Address)
	}
}

// ============================================================================
// Identity credential operations
// ============================================================================

func TestIntegrationChangePassword(t *testing.T) {
	env := newTestEnv(t)

	created := env.createIdentity(t)

	// Same password is a rejected no-op.
	err := env.identity.ChangePassword(env.ctx, created.ID, "password")
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("same password should be Conflict, got %v", err)
	}

	if err := env.identity.ChangePassword(env.ctx, created.ID, "new-password"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
}

func TestIntegrationChangeStatus(t *testing.T) {
	env := newTestEnv(t)

	created := env.createIdentity(t)

	// Accounts are enabled on create; re-enabling is a rejected no-op.
	err := env.identity.ChangeStatus(env.ctx, created.ID, true)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("unchanged status should be Conflict, got %v", err)
	}

	if err := env.identity.ChangeStatus(env.ctx, created.ID, false); err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
}

// ============================================================================
// Car ownership quirks
// ============================================================================

func TestIntegrationCarUpdate_UnresolvableOwnerKept(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createIdentity(t)
	car := env.createCar(t, owner.ID)

	ghost := uuid.New()
	if _, err := env.cars.Update(env.ctx, car.ID, model.CarDraft{
		Brand:      strPtr("UAZ"),
		IdentityID: &ghost,
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	after, err := env.cars.FindByID(env.ctx, car.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if after.Brand != "UAZ" {
		t.Errorf("brand should be updated, got %q", after.Brand)
	}
	if after.Identity.ID != owner.ID {
		t.Errorf("unresolvable owner should be kept, got %s", after.Identity.ID)
	}
}

func TestIntegrationCarUpdate_ReHome(t *testing.T) {
	env := newTestEnv(t)

	oldOwner := env.createIdentity(t)
	newOwner := env.createIdentity(t)
	car := env.createCar(t, oldOwner.ID)

	// Cache both owners' projections; the re-home must clear both.
	if _, err := env.identity.FindByID(env.ctx, oldOwner.ID); err != nil {
		t.Fatalf("FindByID old owner failed: %v", err)
	}
	if _, err := env.identity.FindByID(env.ctx, newOwner.ID); err != nil {
		t.Fatalf("FindByID new owner failed: %v", err)
	}

	if _, err := env.cars.Update(env.ctx, car.ID, model.CarDraft{
		IdentityID: &newOwner.ID,
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	oldFull, err := env.identity.FindByID(env.ctx, oldOwner.ID)
	if err != nil {
		t.Fatalf("FindByID old owner after re-home failed: %v", err)
	}
	if len(oldFull.Cars) != 0 {
		t.Errorf("old owner should have no cars, got %d", len(oldFull.Cars))
	}

	newFull, err := env.identity.FindByID(env.ctx, newOwner.ID)
	if err != nil {
		t.Fatalf("FindByID new owner after re-home failed: %v", err)
	}
	if len(newFull.Cars) != 1 {
		t.Errorf("new owner should have the car, got %d", len(newFull.Cars))
	}
}
