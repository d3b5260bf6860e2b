package storage

import "testing"

func TestValidateAvatarUpload(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		mimeType string
		fileSize int64
		wantOK   bool
	}{
		{name: "jpeg within limit", mimeType: "image/jpeg", fileSize: 1024, wantOK: true},
		{name: "png at limit", mimeType: "image/png", fileSize: MaxAvatarSize, wantOK: true},
		{name: "webp", mimeType: "image/webp", fileSize: 512, wantOK: true},
		{name: "gif rejected", mimeType: "image/gif", fileSize: 1024, wantOK: false},
		{name: "svg rejected", mimeType: "image/svg+xml", fileSize: 1024, wantOK: false},
		{name: "oversized", mimeType: "image/png", fileSize: MaxAvatarSize + 1, wantOK: false},
		{name: "zero size", mimeType: "image/png", fileSize: 0, wantOK: false},
		{name: "negative size", mimeType: "image/png", fileSize: -1, wantOK: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAvatarUpload(tc.mimeType, tc.fileSize)
			if tc.wantOK && err != nil {
				t.Fatalf("ValidateAvatarUpload rejected a valid upload: %v", err)
			}
			if !tc.wantOK && err == nil {
				t.Fatal("ValidateAvatarUpload accepted an invalid upload")
			}
		})
	}
}
