package mapi

// Tag is a single entry in the static tag registry: a numeric property
// code's symbolic atom and expected base type.
type Tag struct {
	Atom     string
	BaseType uint16
}

// tagRegistry covers the commonly used MS-OXPROPS codes. It is a
// compile-time-initialized map, never mutated at runtime.
var tagRegistry = map[uint32]Tag{
	0x001A: {"pr_message_class", PtString8},
	0x007D: {"pr_transport_message_headers", PtString8},
	0x0017: {"pr_importance", PtLong},
	0x0036: {"pr_sensitivity", PtLong},
	0x0037: {"pr_subject", PtString8},
	0x0039: {"pr_client_submit_time", PtSystime},
	0x0E04: {"pr_display_to", PtString8},
	0x0E03: {"pr_display_cc", PtString8},
	0x0E02: {"pr_display_bcc", PtString8},
	0x0E06: {"pr_message_delivery_time", PtSystime},
	0x0E07: {"pr_message_flags", PtLong},
	0x1000: {"pr_body", PtString8},
	0x1009: {"pr_rtf_compressed", PtBinary},
	0x1013: {"pr_body_html", PtBinary},
	0x1035: {"pr_internet_message_id", PtString8},
	0x1039: {"pr_internet_references", PtString8},
	0x1042: {"pr_in_reply_to_id", PtString8},
	0x3001: {"pr_display_name", PtString8},
	0x3A20: {"pr_transmittable_display_name", PtString8},
	0x3002: {"pr_addrtype", PtString8},
	0x3003: {"pr_email_address", PtString8},
	0x3007: {"pr_creation_time", PtSystime},
	0x3008: {"pr_last_modification_time", PtSystime},
	0x39FE: {"pr_smtp_address", PtString8},
	0x0C15: {"pr_recipient_type", PtLong},
	0x0C1A: {"pr_sender_name", PtString8},
	0x0C1E: {"pr_sender_addrtype", PtString8},
	0x0C1F: {"pr_sender_email_address", PtString8},
	0x5D01: {"pr_sender_smtp_address", PtString8},
	0x0065: {"pr_sent_representing_email_address", PtString8},
	0x0C1D: {"pr_sent_representing_entryid", PtBinary},
	0x0042: {"pr_sent_representing_name", PtString8},
	0x5FF6: {"pr_recipient_display_name", PtString8},
	0x3701: {"pr_attach_data_bin", PtBinary},
	0x3703: {"pr_attach_extension", PtString8},
	0x3704: {"pr_attach_filename", PtString8},
	0x3705: {"pr_attach_method", PtLong},
	0x3707: {"pr_attach_long_filename", PtString8},
	0x370B: {"pr_attach_rendering_position", PtLong},
	0x370E: {"pr_attach_mime_tag", PtString8},
	0x3712: {"pr_attach_content_id", PtString8},
	0x3713: {"pr_attach_content_location", PtString8},
	0x3716: {"pr_attach_content_disposition", PtString8},
}

// LookupTag resolves a numeric property code to its registered atom/type.
func LookupTag(code uint32) (Tag, bool) {
	t, ok := tagRegistry[code]
	return t, ok
}
