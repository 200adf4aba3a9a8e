package lunar

// Stems are the ten Heavenly Stems (Can).
var Stems = [10]string{"Giáp", "Ất", "Bính", "Đinh", "Mậu", "Kỷ", "Canh", "Tân", "Nhâm", "Quý"}

// Branches are the twelve Earthly Branches (Chi).
var Branches = [12]string{"Tý", "Sửu", "Dần", "Mão", "Thìn", "Tỵ", "Ngọ", "Mùi", "Thân", "Dậu", "Tuất", "Hợi"}

// CanChiYear returns the Stem-Branch name of year, e.g. "Canh Ngọ" for 1990.
//
// The year is used as given; callers decide whether to pass a solar or a
// lunar year, which differ between 1 January and lunar New Year.
func CanChiYear(year int) string {
	return Stems[mod(year+6, len(Stems))] + " " + Branches[mod(year+8, len(Branches))]
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
