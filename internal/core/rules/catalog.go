package rules

// catalog lists every rule in display order.
func catalog(set Settings) []Rule {
	out := []Rule{
		removeUppercase(),
		editUppercase(),
		editSpeakerLabels(),
		dashSpace(),
		splitLineDashes(),
	}
	out = append(out, ellipsisRules()...)
	out = append(out,
		fixOverlaps(),
		quickDashes(set),
		trimLong(45),
		trimLong(40),
		findReplace(),
		capitalizeAbbreviations(),
		convertVTT(set),
		sanitize(),
	)
	return out
}
