package robustboost

// SplitEntry is a candidate split: the loss reduction it buys, which
// feature and threshold it splits on, and which side missing values
// default to. NewSplitEntry's value (loss_chg 0, feature -1) means "no
// split found yet"; the struct's zero value has feature 0 and is not
// that sentinel.
type SplitEntry struct {
	LossChg     float32
	FeatureID   int
	Threshold   float32
	DefaultLeft bool
}

// NewSplitEntry returns the "nothing found yet" sentinel value.
func NewSplitEntry() SplitEntry {
	return SplitEntry{FeatureID: -1}
}

// SplitIndex returns the candidate's feature id, or -1 if none is set.
func (e SplitEntry) SplitIndex() int {
	return e.FeatureID
}

// NeedReplace reports whether a candidate with the given loss_chg,
// feature id, and threshold would dominate e under the tie-break rule:
// higher loss_chg wins; on a tie, lower feature id wins; on a further
// tie, lower threshold wins.
func (e SplitEntry) NeedReplace(lossChg float32, featureID int, threshold float32) bool {
	if e.FeatureID < 0 {
		return true
	}
	if lossChg != e.LossChg {
		return lossChg > e.LossChg
	}
	if featureID != e.FeatureID {
		return featureID < e.FeatureID
	}
	return threshold < e.Threshold
}

// Update replaces e with the candidate iff the candidate dominates the
// current best under NeedReplace's tie-break rule. Returns whether a
// replacement happened.
func (e *SplitEntry) Update(lossChg float32, featureID int, threshold float32, defaultLeft bool) bool {
	if !e.NeedReplace(lossChg, featureID, threshold) {
		return false
	}
	e.LossChg = lossChg
	e.FeatureID = featureID
	e.Threshold = threshold
	e.DefaultLeft = defaultLeft
	return true
}

// UpdateFrom merges another SplitEntry into e using the same dominance
// rule, without needing to unpack its fields at the call site. Used by
// per-worker reduction and by the distributed cross-worker allreduce.
func (e *SplitEntry) UpdateFrom(other SplitEntry) bool {
	if other.FeatureID < 0 {
		return false
	}
	return e.Update(other.LossChg, other.FeatureID, other.Threshold, other.DefaultLeft)
}

// UpdateSplitValue overwrites the threshold without touching loss_chg or
// the default-direction flag. The enumerator's sweep uses it to set a
// winning candidate's threshold to its eta; there is no midpoint
// post-pass, so thresholds are not moved between neighbouring values.
func (e *SplitEntry) UpdateSplitValue(threshold float32) {
	e.Threshold = threshold
}

// ReduceSplitEntries picks the dominant of a and b under the same
// strict-dominance, tie-broken rule as Update. It is commutative and
// associative, so it can be folded over any worker ordering and still
// yield a value consistent with Update's canonical tie-break — determinism
// across worker counts requires reducing in a fixed, documented order
// (spec section 4.5).
func ReduceSplitEntries(a, b SplitEntry) SplitEntry {
	result := a
	result.UpdateFrom(b)
	return result
}
