package cache

import "github.com/google/uuid"

// Cache key prefixes. Each key holds the JSON full projection of one entity.
const (
	identityKeyPrefix = "identity::"
	carKeyPrefix      = "car::"
	parkingKeyPrefix  = "parking::"
)

// IdentityKey returns the cache key for an identity's full projection.
func IdentityKey(id uuid.UUID) string {
	return identityKeyPrefix + id.String()
}

// CarKey returns the cache key for a car's full projection.
func CarKey(id uuid.UUID) string {
	return carKeyPrefix + id.String()
}

// ParkingKey returns the cache key for a parking's full projection.
func ParkingKey(id uuid.UUID) string {
	return parkingKeyPrefix + id.String()
}

// IdentityClosure is the set of keys stale after a mutation of the
// identity: its own key plus every owned car, whose full projection
// embeds the owner's short projection.
func IdentityClosure(identityID uuid.UUID, carIDs []uuid.UUID) []string {
	keys := make([]string, 0, len(carIDs)+1)
	keys = append(keys, IdentityKey(identityID))
	for _, carID := range carIDs {
		keys = append(keys, CarKey(carID))
	}
	return keys
}

// CarClosure is the set of keys stale after a mutation of the car:
// its own key, the owning identity's key, and every parking the car
// is assigned to.
func CarClosure(carID uuid.UUID, ownerIDs []uuid.UUID, parkingIDs []uuid.UUID) []string {
	keys := make([]string, 0, len(ownerIDs)+len(parkingIDs)+1)
	keys = append(keys, CarKey(carID))
	for _, ownerID := range ownerIDs {
		keys = append(keys, IdentityKey(ownerID))
	}
	for _, parkingID := range parkingIDs {
		keys = append(keys, ParkingKey(parkingID))
	}
	return keys
}

// ParkingClosure is the set of keys stale after a mutation of the
// parking: its own key plus every assigned car, whose full projection
// embeds the parking with its address.
func ParkingClosure(parkingID uuid.UUID, carIDs []uuid.UUID) []string {
	keys := make([]string, 0, len(carIDs)+1)
	keys = append(keys, ParkingKey(parkingID))
	for _, carID := range carIDs {
		keys = append(keys, CarKey(carID))
	}
	return keys
}

// PairClosure is the set of keys stale after one assignment add/remove.
func PairClosure(parkingID, carID uuid.UUID) []string {
	return []string{ParkingKey(parkingID), CarKey(carID)}
}
