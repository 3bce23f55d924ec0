package msg

import (
	"github.com/outlookcore/msgpst/internal/mapi"
	"github.com/outlookcore/msgpst/props"
)

// RecipientType distinguishes the four MAPI recipient roles.
type RecipientType int

const (
	RecipientOrig RecipientType = iota
	RecipientTo
	RecipientCc
	RecipientBcc
)

// Name returns the recipient's best available display name, preferring
// the transmittable name the way Outlook resolves it for display.
func (r *Recipient) Name() string {
	return firstString(r.Properties,
		"pr_transmittable_display_name", "pr_display_name", "pr_recipient_display_name")
}

// Email returns the recipient's best available address.
func (r *Recipient) Email() string {
	return firstString(r.Properties, "pr_smtp_address", "pr_email_address")
}

// Type returns the recipient's role, defaulting to RecipientTo when
// pr_recipient_type is absent or carries an unrecognized value.
func (r *Recipient) Type() RecipientType {
	v, ok := mapi.GetBySymbol(r.Properties, "pr_recipient_type")
	if !ok {
		return RecipientTo
	}
	n, ok := v.Single.(int32)
	if !ok {
		return RecipientTo
	}
	switch n {
	case 0:
		return RecipientOrig
	case 2:
		return RecipientCc
	case 3:
		return RecipientBcc
	default:
		return RecipientTo
	}
}

// Filename returns the attachment's best available filename, falling back
// to "attachment" when neither the long nor short filename property is set.
func (a *Attachment) Filename() string {
	if name := firstString(a.Properties, "pr_attach_long_filename", "pr_attach_filename"); name != "" {
		return name
	}
	return "attachment"
}

// Data returns the attachment's raw binary payload, or nil if absent.
func (a *Attachment) Data() []byte {
	v, ok := mapi.GetBySymbol(a.Properties, "pr_attach_data_bin")
	if !ok {
		return nil
	}
	b, _ := v.Single.([]byte)
	return b
}

// MimeType returns the attachment's declared MIME type, or "" if unset.
func (a *Attachment) MimeType() string {
	return firstString(a.Properties, "pr_attach_mime_tag")
}

// firstString returns the string value of the first atom present on ps.
func firstString(ps *props.PropertySet, atoms ...string) string {
	for _, atom := range atoms {
		v, ok := mapi.GetBySymbol(ps, atom)
		if !ok {
			continue
		}
		if s, ok := v.Single.(string); ok && s != "" {
			return s
		}
	}
	return ""
}
