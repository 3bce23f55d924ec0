package pst

// Supported NDB encryption_type values.
const (
	EncryptionNone         byte = 0
	EncryptionCompressible byte = 1
)

// compEnc is the fixed 256-byte NDB "compressible encryption" substitution
// table (MS-PST §5.1, mpbbCrypt). Any encryption_type other than
// EncryptionNone/EncryptionCompressible is treated as plaintext.
var compEnc = [256]byte{
	0x47, 0xf1, 0xb4, 0xe6, 0x0b, 0x6a, 0x72, 0x48, 0x85, 0x4e, 0x9e, 0xeb, 0xe2, 0xf8, 0x94, 0x53,
	0xe0, 0xbb, 0xa0, 0x02, 0xe8, 0x5a, 0x09, 0xab, 0xdb, 0xe3, 0xba, 0xc6, 0x7c, 0xc3, 0x10, 0xdd,
	0x39, 0x05, 0x96, 0x30, 0xf5, 0x37, 0x60, 0x82, 0x8c, 0xc9, 0x13, 0x4a, 0x6b, 0x1d, 0xf3, 0xfb,
	0x8f, 0x26, 0x97, 0xca, 0x91, 0x17, 0x01, 0xc4, 0x32, 0x2d, 0x6e, 0x31, 0x95, 0xff, 0xd9, 0x23,
	0x20, 0x7a, 0x5b, 0x3b, 0x14, 0x9a, 0x5f, 0x5e, 0xd6, 0xc5, 0x7d, 0xf4, 0x06, 0xdf, 0xa8, 0x7f,
	0x6c, 0x75, 0xa4, 0xd1, 0x83, 0x52, 0xdc, 0xc2, 0x22, 0x56, 0x0f, 0x6f, 0x81, 0xde, 0x29, 0xe4,
	0xbd, 0xbe, 0x5d, 0xb8, 0x4f, 0xf6, 0xc8, 0xe5, 0x4c, 0x9c, 0x74, 0xaa, 0xe1, 0x3c, 0x43, 0xd4,
	0x21, 0xd5, 0xf0, 0xfd, 0x08, 0xb2, 0x3e, 0x84, 0xb5, 0x88, 0xd3, 0x0a, 0x3a, 0x19, 0x3f, 0xb7,
	0xc7, 0xf7, 0x5c, 0x90, 0x2e, 0xbc, 0x9b, 0x8e, 0xf9, 0x66, 0x18, 0xec, 0xd7, 0x1e, 0x99, 0x76,
	0x0e, 0x64, 0xcf, 0xd8, 0x78, 0x15, 0xcc, 0x1f, 0x9d, 0x70, 0x16, 0x40, 0xb3, 0x58, 0x6d, 0x0d,
	0xea, 0x62, 0x77, 0x7e, 0xc0, 0x79, 0x4d, 0x93, 0x49, 0x4b, 0xed, 0x2b, 0x54, 0xda, 0xb6, 0xcb,
	0x38, 0x33, 0x00, 0x0c, 0x98, 0x7b, 0xd0, 0x1a, 0x2f, 0xb1, 0x11, 0x55, 0x03, 0xe9, 0x65, 0xa5,
	0xc1, 0xaf, 0x69, 0x63, 0x35, 0x3d, 0xa1, 0xee, 0x51, 0xcd, 0x2a, 0x89, 0x41, 0x27, 0x12, 0xce,
	0x1c, 0x25, 0x44, 0x8d, 0x71, 0x59, 0xfc, 0x8a, 0x86, 0xa9, 0x2c, 0x46, 0x24, 0xa7, 0x9f, 0xfa,
	0x68, 0xb9, 0x34, 0xf2, 0x04, 0x61, 0xd2, 0xac, 0x50, 0x28, 0xbf, 0xa2, 0xe7, 0x36, 0x92, 0x42,
	0x1b, 0xb0, 0x57, 0x73, 0x87, 0x67, 0xa3, 0xa6, 0xfe, 0x80, 0xad, 0x8b, 0xae, 0x07, 0xef, 0x45,
}

// DecryptBlock applies the NDB compressible-encryption substitution to a
// block's bytes after it is read and before it is parsed. It is a no-op
// for any encryptionType other than EncryptionCompressible.
func DecryptBlock(data []byte, encryptionType byte) []byte {
	if encryptionType != EncryptionCompressible {
		return data
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = compEnc[b]
	}
	return out
}
