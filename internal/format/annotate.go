package format

import "time"

// Annotate inserts a new annotation immediately after the target entry
// and recomputes aggregates. targetID must name an entry already in the
// session; if it does not, the annotation is still inserted at the end
// (callers are expected to have validated the target via Validate).
func (s *Session) Annotate(targetID, content string, style AnnotationStyle) *Session {
	out := &Session{Entries: append([]Entry(nil), s.Entries...)}

	targetIdx := -1
	targetTs := int64(0)
	for i, e := range out.Entries {
		if e.EntryID() == targetID {
			targetIdx = i
			targetTs = e.Timestamp()
			break
		}
	}

	annotation := &AnnotationEntry{
		Common: Common{
			ID:   NewID(),
			Ts:   targetTs,
			Type: TypeAnnotation,
		},
		TargetID:  targetID,
		Content:   content,
		Style:     style,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if targetIdx < 0 {
		out.AddEntry(annotation)
	} else {
		out.InsertAfter(targetIdx, annotation)
	}

	Recompute(out)
	return out
}
