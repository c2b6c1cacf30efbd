package resume

import "sort"

// Identified is a record that may already exist in storage.
type Identified interface {
	Identity() *int64
}

// Plan is the set of writes that turns the stored rows of one collection into
// the submitted collection.
type Plan[T Identified] struct {
	Delete []int64
	Update []T
	Insert []T
}

func (p Plan[T]) Empty() bool {
	return len(p.Delete) == 0 && len(p.Update) == 0 && len(p.Insert) == 0
}

// Reconcile diffs the stored ids of one user against the submitted records:
//
//	Delete = stored \ submitted ids
//	Update = submitted records whose id is stored
//	Insert = submitted records without an id, or with an id the user does not own
//
// An empty submission deletes every stored row.
func Reconcile[T Identified](stored []int64, incoming []T) Plan[T] {
	storedSet := make(map[int64]struct{}, len(stored))
	for _, id := range stored {
		storedSet[id] = struct{}{}
	}

	keep := make(map[int64]struct{}, len(incoming))
	plan := Plan[T]{}
	for _, rec := range incoming {
		id := rec.Identity()
		if id == nil {
			plan.Insert = append(plan.Insert, rec)
			continue
		}
		if _, ok := storedSet[*id]; !ok {
			plan.Insert = append(plan.Insert, rec)
			continue
		}
		keep[*id] = struct{}{}
		plan.Update = append(plan.Update, rec)
	}

	for id := range storedSet {
		if _, ok := keep[id]; !ok {
			plan.Delete = append(plan.Delete, id)
		}
	}
	sort.Slice(plan.Delete, func(i, j int) bool { return plan.Delete[i] < plan.Delete[j] })

	return plan
}
