package app

// Asset-store failure handling is a named policy rather than a per-call-site
// choice: uploads always abort the surrounding request, deletions default to
// best-effort so a stale asset can never orphan the mutation itself.
type DeletionPolicy int

const (
	// DeleteBestEffort logs a failed asset deletion and carries on.
	DeleteBestEffort DeletionPolicy = iota
	// DeleteStrict aborts the surrounding operation on a failed deletion.
	DeleteStrict
)

func (p DeletionPolicy) String() string {
	if p == DeleteStrict {
		return "strict"
	}
	return "best-effort"
}
