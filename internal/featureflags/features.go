package featureflags

var (
	// CompressibilityProbe compresses each sample with zstd, s2 and lz4 and
	// reports the ratios alongside the entropy based classification.
	CompressibilityProbe = new("CompressibilityProbe", true)

	// EntropyProfile computes the entropy of sliding windows over the sample.
	// The profile is large compared to the rest of the report, so it is off
	// unless requested.
	EntropyProfile = new("EntropyProfile", false)

	// DeclaredTypeHint suggests the signature label closest to the declared
	// type when the declared and detected types disagree.
	DeclaredTypeHint = new("DeclaredTypeHint", true)

	// LeaseExtender determines whether the worker uses a real GCP extender
	// for keeping messages alive while large objects are digested.
	LeaseExtender = new("LeaseExtender", true)
)
