package params

// DefaultEnzymes is the enzyme table Comet reads when search_enzyme_number=1.
var DefaultEnzymes = []string{
	"0.  No_enzyme              0      -           -",
	"1.  Trypsin                1      KR          P",
}

// Default returns parameters that make Tide and Comet search the same
// candidate space: tryptic full digest, monoisotopic masses, one decoy per
// target, five reported matches, single-threaded Comet.
func Default() *File {
	f := New()
	for _, kv := range [][2]string{
		{"enzyme", "trypsin"},
		{"search_enzyme_number", "1"},
		{"digestion", "full-digest"},
		{"num_enzyme_termini", "2"},
		{"missed-cleavages", "0"},
		{"allowed_missed_cleavage", "0"},
		{"minimum_peaks", "10"},
		{"min-peaks", "10"},
		{"precursor-window", "3"},
		{"precursor-window-type", "mass"},
		{"peptide_mass_tolerance", "3"},
		{"peptide_mass_units", "0"},
		{"isotopic-mass", "mono"},
		{"monoisotopic-precursor", "T"},
		{"mass_type_parent", "1"},
		{"fragment-mass", "mono"},
		{"mass_type_fragment", "1"},
		{"decoy-format", "peptide-reverse"},
		{"num-decoys-per-target", "1"},
		{"keep-terminal-aminos", "C"},
		{"decoy_search", "1"},
		{"num_results", "6"},
		{"num_output_lines", "5"},
		{"top-match", "5"},
		{"remove_precursor_peak", "1"},
		{"remove_precursor_tolerance", "15"},
		{"remove-precursor-peak", "T"},
		{"remove-precursor-tolerance", "15"},
		{"use-flanking-peaks", "F"},
		{"theoretical_fragment_ions", "1"},
		{"use-neutral-loss-peaks", "F"},
		{"fragment_bin_offset", "0.68"},
		{"fragment_bin_tol", "1.0005079"},
		{"mz-bin-offset", "0.68"},
		{"mz-bin-width", "1.0005079"},
		{"concat", "T"},
		{"overwrite", "T"},
		{"output_pepxml", "0"},
		{"add_C_cysteine", "57.021464"},
		{"num_threads", "1"},
		{"digest_mass_range", "200 7200"},
		{"max_fragment_charge", "2"},
		{"isotope_error", "0"},
	} {
		f.Set(kv[0], kv[1])
	}
	f.SetEnzymes(DefaultEnzymes)
	return f
}
