package core

// bookAddedKey groups BookAdded events raised for the same title within one
// unit of work.
type bookAddedKey struct {
	Title           string
	ISBN            ISBNString
	PublicationDate PublicationDate
}

// Reduce collapses the domain events produced within one unit of work.
//
// Every event kind other than BookAdded passes through unchanged, one-for-one,
// in its original order. BookAdded events are grouped by (title, isbn,
// publication date); each group is emitted exactly once, at the position of its
// first occurrence, with the group's summed count and the first event's
// timestamp. A bulk add of N identical copies must not fan out into N
// downstream notifications and N queued statistics deltas.
//
// Zero input events yield an empty output; a single event of any kind passes
// through unmodified.
func Reduce(events DomainEvents) DomainEvents {
	if len(events) == 0 {
		return nil
	}

	reduced := make(DomainEvents, 0, len(events))
	firstAt := make(map[bookAddedKey]int)

	for _, event := range events {
		added, isBookAdded := event.(BookAdded)
		if !isBookAdded {
			reduced = append(reduced, event)
			continue
		}

		key := bookAddedKey{Title: added.Title, ISBN: added.ISBN, PublicationDate: added.PublicationDate}

		at, seen := firstAt[key]
		if !seen {
			firstAt[key] = len(reduced)
			reduced = append(reduced, added)
			continue
		}

		merged := reduced[at].(BookAdded)
		merged.Count += added.Count
		reduced[at] = merged
	}

	return reduced
}
