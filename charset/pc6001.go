package charset

// pc6001Runes is NEC PC-6001's 8-bit character set: the same control
// pictures and ASCII range as PC98, card suits, を and small hiragana
// at 0x80-0x8F, hiragana at 0x90-0x9F and 0xE0-0xFD, and halfwidth
// katakana at 0xA1-0xDF. Slots 0xA0, 0xFE and 0xFF hold private-use
// placeholders.
var pc6001Runes = [256]rune{
	'␀', '␁', '␂', '␃', '␄', '␅', '␆', '␇', '␈', '␉', '␊', '␋', '␌', '␍', '␎', '␏',
	'␐', '␑', '␒', '␓', '␔', '␕', '␖', '␗', '␘', '␙', '␚', '␛', '￫', '￩', '￪', '￬',
	' ', '!', '"', '#', '$', '%', '&', '\'', '(', ')', '*', '+', ',', '-', '.', '/',
	'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', ':', ';', '<', '=', '>', '?',
	'@', 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O',
	'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z', '[', '¥', ']', '^', '_',
	'`', 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o',
	'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z', '{', '¦', '}', '~', '␡',
	'♠', '♥', '♦', '♣', '￮', '•', 'を', 'ぁ', 'ぃ', 'ぅ', 'ぇ', 'ぉ', 'ゃ', 'ゅ', 'ょ', 'っ',
	'ー', 'あ', 'い', 'う', 'え', 'お', 'か', 'き', 'く', 'け', 'こ', 'さ', 'し', 'す', 'せ', 'そ',
	'', '｡', '｢', '｣', '､', '･', 'ｦ', 'ｧ', 'ｨ', 'ｩ', 'ｪ', 'ｫ', 'ｬ', 'ｭ', 'ｮ', 'ｯ',
	'ｰ', 'ｱ', 'ｲ', 'ｳ', 'ｴ', 'ｵ', 'ｶ', 'ｷ', 'ｸ', 'ｹ', 'ｺ', 'ｻ', 'ｼ', 'ｽ', 'ｾ', 'ｿ',
	'ﾀ', 'ﾁ', 'ﾂ', 'ﾃ', 'ﾄ', 'ﾅ', 'ﾆ', 'ﾇ', 'ﾈ', 'ﾉ', 'ﾊ', 'ﾋ', 'ﾌ', 'ﾍ', 'ﾎ', 'ﾏ',
	'ﾐ', 'ﾑ', 'ﾒ', 'ﾓ', 'ﾔ', 'ﾕ', 'ﾖ', 'ﾗ', 'ﾘ', 'ﾙ', 'ﾚ', 'ﾛ', 'ﾜ', 'ﾝ', 'ﾞ', 'ﾟ',
	'た', 'ち', 'つ', 'て', 'と', 'な', 'に', 'ぬ', 'ね', 'の', 'は', 'ひ', 'ふ', 'へ', 'ほ', 'ま',
	'み', 'む', 'め', 'も', 'や', 'ゆ', 'よ', 'ら', 'り', 'る', 'れ', 'ろ', 'わ', 'ん', '', '',
}

// pc6001AltRunes is the 32-entry alternate page reached through the
// 0x14 lead-in byte (kanji/line-drawing shortcuts BASIC's PRINT used
// for common words and box-drawing).
var pc6001AltRunes = [32]rune{
	'', '月', '火', '水', '木', '金', '土', '日', '年', '円', '時', '分', '秒', '百', '千', '万',
	'π', '┴', '┬', '┤', '├', '┼', '│', '─', '┌', '┐', '└', '┘', '╳', '大', '中', '小',
}

// PC6001 is the Charset implementation for NEC PC-6001/PC-6601 BASIC
// text and filenames, including the 0x14-prefixed alternate page.
var PC6001 Charset = newTable("pc6001-8bit", pc6001Runes, pc6001AltRunes, 0x14)
