package domain

// AnnotateDurations maps each window to an AnnotatedWindow carrying its
// hour span as a real number (fractional hours allowed). Total over any
// window with Start <= End; a zero-length window annotates to 0.
func AnnotateDurations(windows []TimeWindow) []AnnotatedWindow {
	annotated := make([]AnnotatedWindow, len(windows))
	for i, w := range windows {
		annotated[i] = AnnotatedWindow{
			TimeWindow:    w,
			DurationHours: w.End.Sub(w.Start).Hours(),
		}
	}
	return annotated
}
