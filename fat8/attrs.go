package fat8

import "github.com/retrocompute/fat8d88/hostname"

// attrBit pairs a directory-entry attribute-byte mask with the
// attribute name hostname.ToHostFSName understands. The two pseudo-attrs
// (deleted/unused) aren't really bits in the stored byte; the caller
// folds them into attrMask at 0x100/0x200 based on the entry's first
// name byte before calling attrsFromMask.
var attrBits = []struct {
	mask int
	name string
}{
	{0x001, hostname.AttrBinary},
	{0x002, hostname.Attr1Reserved},
	{0x004, hostname.Attr2Reserved},
	{0x008, hostname.Attr3Reserved},
	{0x010, hostname.AttrReadOnly},
	{0x020, hostname.AttrObfuscated},
	{0x040, hostname.AttrReadAfterWrite},
	{0x080, hostname.AttrNonASCII},
	{0x100, hostname.PseudoAttrDeleted},
	{0x200, hostname.PseudoAttrUnused},
}

func attrsFromMask(mask int) hostname.Attrs {
	attrs := hostname.Attrs{}
	for _, b := range attrBits {
		if mask&b.mask != 0 {
			attrs[b.name] = true
		}
	}
	return attrs
}

// unlistedEntryAttrs names the attributes that make an entry
// "unlisted": reserved bits whose meaning isn't documented, plus the two
// pseudo-attributes. The directory listing printed by cmd/fat8tool does
// not consult isUnlisted and shows no brackets.
var unlistedEntryAttrs = hostname.NewAttrs(
	hostname.Attr1Reserved, hostname.Attr2Reserved, hostname.Attr3Reserved,
	hostname.PseudoAttrUnused, hostname.PseudoAttrDeleted,
)

func isUnlisted(attrs hostname.Attrs) bool {
	for name := range unlistedEntryAttrs {
		if attrs.Has(name) {
			return true
		}
	}
	return false
}
