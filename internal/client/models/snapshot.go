package models

// ListingSnapshot is the set of records known for an identity at a point in
// time, partitioned into sent and received. Snapshots are replaced wholesale,
// never patched, so a half-updated view can never be observed.
type ListingSnapshot struct {
	Sent     []FileRecord
	Received []FileRecord
}

// ReceivedIDs returns the set of received content ids.
func (s *ListingSnapshot) ReceivedIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.Received))
	for _, r := range s.Received {
		ids[r.ContentID] = struct{}{}
	}
	return ids
}

// DiffReceived returns the records present in fresh but absent from s.
func (s *ListingSnapshot) DiffReceived(fresh *ListingSnapshot) []FileRecord {
	known := s.ReceivedIDs()
	var added []FileRecord
	for _, r := range fresh.Received {
		if _, ok := known[r.ContentID]; !ok {
			added = append(added, r)
		}
	}
	return added
}
