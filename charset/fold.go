package charset

// compatFold implements the compatibility normalization pass Encode
// retries unmatched runes through when strict is false. Go's standard
// library has no Unicode normalization package (no NFKD/NFKC), so the
// handful of halfwidth<->fullwidth foldings these tables actually need
// are spelled out directly instead of derived at runtime: fullwidth
// ASCII (U+FF01-FF5E) folds to its ASCII form, the ideographic space
// and fullwidth yen sign fold to their single-width equivalents, and
// fullwidth katakana/punctuation folds to the halfwidth katakana both
// PC98 and PC6001 already encode natively at 0xA1-0xDF.
func compatFold(ch rune) (rune, bool) {
	switch {
	case ch >= 0xFF01 && ch <= 0xFF5E:
		return ch - 0xFEE0, true
	case ch == 0x3000:
		return ' ', true
	case ch == 0xFFE5:
		return 0xA5, true
	}
	if folded, ok := fullwidthFold[ch]; ok {
		return folded, true
	}
	return 0, false
}

// fullwidthFold maps fullwidth katakana and its punctuation to the
// halfwidth forms PC98/PC6001 store directly. Voiced/semi-voiced
// combinations (e.g. U+30AC "ガ") are not included: halfwidth encodes
// those as two bytes (base kana plus a trailing ﾞ/ﾟ), which a
// single-rune fold can't produce.
var fullwidthFold = map[rune]rune{
	'。': '｡', '「': '｢', '」': '｣', '、': '､', '・': '･', 'ー': 'ｰ',
	'ア': 'ｱ', 'イ': 'ｲ', 'ウ': 'ｳ', 'エ': 'ｴ', 'オ': 'ｵ',
	'カ': 'ｶ', 'キ': 'ｷ', 'ク': 'ｸ', 'ケ': 'ｹ', 'コ': 'ｺ',
	'サ': 'ｻ', 'シ': 'ｼ', 'ス': 'ｽ', 'セ': 'ｾ', 'ソ': 'ｿ',
	'タ': 'ﾀ', 'チ': 'ﾁ', 'ツ': 'ﾂ', 'テ': 'ﾃ', 'ト': 'ﾄ',
	'ナ': 'ﾅ', 'ニ': 'ﾆ', 'ヌ': 'ﾇ', 'ネ': 'ﾈ', 'ノ': 'ﾉ',
	'ハ': 'ﾊ', 'ヒ': 'ﾋ', 'フ': 'ﾌ', 'ヘ': 'ﾍ', 'ホ': 'ﾎ',
	'マ': 'ﾏ', 'ミ': 'ﾐ', 'ム': 'ﾑ', 'メ': 'ﾒ', 'モ': 'ﾓ',
	'ヤ': 'ﾔ', 'ユ': 'ﾕ', 'ヨ': 'ﾖ',
	'ラ': 'ﾗ', 'リ': 'ﾘ', 'ル': 'ﾙ', 'レ': 'ﾚ', 'ロ': 'ﾛ',
	'ワ': 'ﾜ', 'ン': 'ﾝ',
	'ァ': 'ｧ', 'ィ': 'ｨ', 'ゥ': 'ｩ', 'ェ': 'ｪ', 'ォ': 'ｫ',
	'ャ': 'ｬ', 'ュ': 'ｭ', 'ョ': 'ｮ', 'ッ': 'ｯ',
}
