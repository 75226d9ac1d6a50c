package domain

import "testing"

func TestClassifyAllowedExtensions(t *testing.T) {
	cases := []struct {
		filename string
		want     FileCategory
	}{
		{"cv.pdf", CategoryPDF},
		{"CV.PDF", CategoryPDF},
		{"letter.doc", CategoryDocx},
		{"letter.docx", CategoryDocx},
		{"scan.png", CategoryImage},
		{"scan.jpg", CategoryImage},
		{"scan.JPEG", CategoryImage},
		{"archive.tar.pdf", CategoryPDF},
	}
	for _, tc := range cases {
		got, err := Classify(tc.filename)
		if err != nil {
			t.Fatalf("Classify(%q) returned error: %v", tc.filename, err)
		}
		if got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func TestClassifyRejectsUnknownExtensions(t *testing.T) {
	for _, filename := range []string{"cv.txt", "cv.exe", "cv", "cv.", "cv.pdf.zip"} {
		if _, err := Classify(filename); !IsKind(err, ErrUnsupportedType) {
			t.Errorf("Classify(%q) = %v, want ErrUnsupportedType", filename, err)
		}
	}
}

func TestCheckSize(t *testing.T) {
	if err := CheckSize(1024); err != nil {
		t.Fatalf("CheckSize(1024) = %v, want nil", err)
	}
	if err := CheckSize(MaxUploadSize); err != nil {
		t.Fatalf("CheckSize(max) = %v, want nil", err)
	}
	if err := CheckSize(MaxUploadSize + 1); !IsKind(err, ErrTooLarge) {
		t.Errorf("CheckSize(max+1) = %v, want ErrTooLarge", err)
	}
	if err := CheckSize(0); !IsKind(err, ErrEmptyFile) {
		t.Errorf("CheckSize(0) = %v, want ErrEmptyFile", err)
	}
}
