// Package persist implements the write path between the state store and the
// remote document store: a per-bucket debounce table that collapses bursts,
// feeding a global serial queue so no two remote writes ever overlap.
package persist

import (
	"fmt"

	"github.com/dvilela/sistema-vida/internal/player"
)

// Bucket names one of the independent units of debounce and serialization.
type Bucket string

const (
	BucketProfile          Bucket = "profile"
	BucketGoals            Bucket = "goals"
	BucketMissions         Bucket = "missions"
	BucketSkills           Bucket = "skills"
	BucketRoutine          Bucket = "routine"
	BucketRoutineTemplates Bucket = "routineTemplates"
	BucketAllUsers         Bucket = "allUsers"
	BucketWorldEvents      Bucket = "worldEvents"
)

// Buckets lists every bucket in a stable order.
var Buckets = []Bucket{
	BucketProfile, BucketGoals, BucketMissions, BucketSkills,
	BucketRoutine, BucketRoutineTemplates, BucketAllUsers, BucketWorldEvents,
}

// singleDocument reports whether the bucket persists as one merge-written
// document rather than a reconciled collection.
func singleDocument(b Bucket) bool {
	switch b {
	case BucketProfile, BucketRoutine, BucketRoutineTemplates:
		return true
	}
	return false
}

// DocumentPath returns (collection, id) for a single-document bucket.
func DocumentPath(b Bucket, userID string) (string, string) {
	switch b {
	case BucketProfile:
		return "users", userID
	case BucketRoutine:
		return "users/" + userID + "/routine", "main"
	case BucketRoutineTemplates:
		return "users/" + userID + "/routine", "templates"
	}
	return "", ""
}

// CollectionPath returns the collection for a multi-document bucket.
func CollectionPath(b Bucket, userID string) string {
	switch b {
	case BucketGoals:
		return "users/" + userID + "/goals"
	case BucketMissions:
		return "users/" + userID + "/missions"
	case BucketSkills:
		return "users/" + userID + "/skills"
	case BucketAllUsers:
		return "users"
	case BucketWorldEvents:
		return "world_events"
	}
	return ""
}

// document pairs a string-coerced id with its payload for reconciliation.
type document struct {
	ID   string
	Data any
}

// bucketDocuments flattens a multi-document bucket's typed slice into
// id-keyed documents.
func bucketDocuments(b Bucket, data any) ([]document, error) {
	switch v := data.(type) {
	case []player.Goal:
		docs := make([]document, len(v))
		for i, g := range v {
			docs[i] = document{ID: g.ID, Data: g}
		}
		return docs, nil
	case []player.RankedMission:
		docs := make([]document, len(v))
		for i, m := range v {
			docs[i] = document{ID: m.ID, Data: m}
		}
		return docs, nil
	case []player.Skill:
		docs := make([]document, len(v))
		for i, s := range v {
			docs[i] = document{ID: s.ID, Data: s}
		}
		return docs, nil
	case []player.Profile:
		docs := make([]document, len(v))
		for i, p := range v {
			docs[i] = document{ID: p.ID, Data: p}
		}
		return docs, nil
	case []player.WorldEvent:
		docs := make([]document, len(v))
		for i, w := range v {
			docs[i] = document{ID: w.ID, Data: w}
		}
		return docs, nil
	}
	return nil, fmt.Errorf("bucket %s: unsupported payload type %T", b, data)
}
