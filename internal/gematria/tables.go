package gematria

// characterValues maps the 22 Hebrew letters and their final forms to their
// standard gematria values. Final forms share the value of the base letter.
var characterValues = map[rune]int{
	'א': 1, 'ב': 2, 'ג': 3, 'ד': 4, 'ה': 5, 'ו': 6, 'ז': 7, 'ח': 8, 'ט': 9,
	'י': 10, 'כ': 20, 'ך': 20, 'ל': 30, 'מ': 40, 'ם': 40, 'נ': 50, 'ן': 50,
	'ס': 60, 'ע': 70, 'פ': 80, 'ף': 80, 'צ': 90, 'ץ': 90, 'ק': 100,
	'ר': 200, 'ש': 300, 'ת': 400,
}

// digraphs are tried before single letters.
var digraphs = map[string]rune{
	"ch": 'ח',
	"kh": 'ח',
	"sh": 'ש',
	"th": 'ת',
	"ts": 'צ',
	"tz": 'צ',
	"ph": 'פ',
}

var letters = map[byte]rune{
	'a': 'א', 'b': 'ב', 'c': 'כ', 'd': 'ד', 'e': 'ה', 'f': 'פ', 'g': 'ג',
	'h': 'ה', 'i': 'י', 'j': 'י', 'k': 'כ', 'l': 'ל', 'm': 'מ', 'n': 'נ',
	'o': 'ו', 'p': 'פ', 'q': 'ק', 'r': 'ר', 's': 'ס', 't': 'ט', 'u': 'ו',
	'v': 'ו', 'w': 'ו', 'x': 'ס', 'y': 'י', 'z': 'ז',
}

type biblicalNumber struct {
	number  int
	meaning string
}

// biblicalNumbers is ordered; nearest-match ties resolve to the earlier entry.
var biblicalNumbers = []biblicalNumber{
	{1, "Unity and the primacy of God"},
	{2, "Witness and division"},
	{3, "Divine completeness"},
	{4, "Creation and the earth"},
	{5, "Grace"},
	{6, "Man and human weakness"},
	{7, "Spiritual perfection"},
	{8, "New beginnings"},
	{9, "Divine judgment"},
	{10, "Testimony and the law"},
	{12, "Divine government"},
	{13, "Rebellion and apostasy"},
	{17, "Victory"},
	{18, "Bondage"},
	{24, "The priesthood"},
	{30, "Dedication"},
	{40, "Testing and trial"},
	{50, "Jubilee and liberty"},
	{70, "Judgment of the nations"},
	{120, "Divine period of probation"},
	{144, "The redeemed of God"},
	{153, "The harvest of souls"},
	{400, "Affliction and sojourning"},
	{666, "The number of the beast"},
	{777, "Perfection of divine judgment"},
	{888, "The name of Jesus in Greek"},
	{1000, "The millennial reign"},
}

// meaningOf returns the table entry for an exact number.
func meaningOf(n int) (string, bool) {
	for _, b := range biblicalNumbers {
		if b.number == n {
			return b.meaning, true
		}
	}
	return "", false
}
