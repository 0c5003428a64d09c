package convert_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"heicbatch/internal/codec/codecmock"
	"heicbatch/internal/convert"
)

func TestClassify(t *testing.T) {
	tests := map[string]struct {
		path     string
		expClass convert.Class
	}{
		"upper case heic":  {path: "/p/IMG_0001.HEIC", expClass: convert.HEIC},
		"lower case heic":  {path: "/p/img.heic", expClass: convert.HEIC},
		"heif":             {path: "/p/img.HeIf", expClass: convert.HEIC},
		"upper case mov":   {path: "/p/IMG_0001.MOV", expClass: convert.MOV},
		"mixed case mov":   {path: "/p/clip.Mov", expClass: convert.MOV},
		"jpeg":             {path: "/p/img.jpeg", expClass: convert.Ignored},
		"no extension":     {path: "/p/README", expClass: convert.Ignored},
		"heic in dir name": {path: "/p/x.heic/notes.txt", expClass: convert.Ignored},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expClass, convert.Classify(test.path))
		})
	}
}

func TestParseExifDate(t *testing.T) {
	tests := map[string]struct {
		value   string
		expDate string
		expErr  bool
	}{
		"valid":              {value: "2023:07:04 10:15:00", expDate: "2023-07-04"},
		"trailing nul":       {value: "2023:07:04 10:15:00\x00", expDate: "2023-07-04"},
		"empty":              {value: "", expErr: true},
		"dash separated":     {value: "2023-07-04 10:15:00", expErr: true},
		"blank camera value": {value: "    :  :     :  :  ", expErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := convert.ParseExifDate(test.value)
			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expDate, d.Format("2006-01-02"))
		})
	}
}

func TestResolveCaptureDate(t *testing.T) {
	mtime := time.Date(2022, 1, 1, 9, 30, 0, 0, time.Local)
	probed := time.Date(2021, 5, 6, 7, 8, 9, 0, time.Local)

	tests := map[string]struct {
		task      convert.Task
		sources   func() []convert.DateSource
		expDate   string
		expSource string
		expErr    bool
	}{
		"exif wins over mtime": {
			task:      convert.Task{ExifDate: "2023:07:04 10:15:00", ModTime: mtime},
			sources:   func() []convert.DateSource { return []convert.DateSource{convert.ExifDateSource, convert.ModTimeSource} },
			expDate:   "2023-07-04",
			expSource: "exif",
		},
		"unparseable exif falls back to mtime": {
			task:      convert.Task{ExifDate: "garbage", ModTime: mtime},
			sources:   func() []convert.DateSource { return []convert.DateSource{convert.ExifDateSource, convert.ModTimeSource} },
			expDate:   "2022-01-01",
			expSource: "mtime",
		},
		"probe is used before mtime": {
			task: convert.Task{Source: "/p/IMG_0001.MOV", ModTime: mtime},
			sources: func() []convert.DateSource {
				p := &codecmock.Prober{}
				p.On("CreationTime", "/p/IMG_0001.MOV").Return(probed, nil)
				return []convert.DateSource{convert.ExifDateSource, convert.ProbeDateSource(p), convert.ModTimeSource}
			},
			expDate:   "2021-05-06",
			expSource: "probe",
		},
		"failing probe falls back to mtime": {
			task: convert.Task{Source: "/p/IMG_0001.MOV", ModTime: mtime},
			sources: func() []convert.DateSource {
				p := &codecmock.Prober{}
				p.On("CreationTime", mock.Anything).Return(nil, errors.New("ffprobe not found"))
				return []convert.DateSource{convert.ProbeDateSource(p), convert.ModTimeSource}
			},
			expDate:   "2022-01-01",
			expSource: "mtime",
		},
		"nothing found": {
			task:    convert.Task{},
			sources: func() []convert.DateSource { return []convert.DateSource{convert.ExifDateSource, convert.ModTimeSource} },
			expErr:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			task := test.task

			err := convert.ResolveCaptureDate(&task, test.sources())
			if test.expErr {
				assert.ErrorIs(t, err, convert.ErrNoCaptureDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expDate, task.CaptureDate.Format("2006-01-02"))
			assert.Equal(t, test.expSource, task.DateSource)
		})
	}
}

func TestSubject(t *testing.T) {
	tests := map[string]struct {
		path       string
		expSubject string
	}{
		"space":            {path: "/photos/Jane Doe/IMG.HEIC", expSubject: "Jane_Doe"},
		"hyphen":           {path: "/photos/Mary-Kate/IMG.HEIC", expSubject: "Mary_Kate"},
		"mixed":            {path: "/photos/a b-c d/IMG.HEIC", expSubject: "a_b_c_d"},
		"only parent used": {path: "/photos/Jane Doe/2023 trip/IMG.HEIC", expSubject: "2023_trip"},
		"already clean":    {path: "/photos/bob/IMG.HEIC", expSubject: "bob"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expSubject, convert.Subject(filepath.FromSlash(test.path)))
		})
	}
}

func TestOutputPath(t *testing.T) {
	dir := filepath.Join("photos", "Jane Doe")
	date := time.Date(2023, 7, 4, 10, 15, 0, 0, time.Local)

	tests := map[string]struct {
		task    convert.Task
		suffix  string
		rename  bool
		expPath string
	}{
		"renamed heic": {
			task:    convert.Task{Source: filepath.Join(dir, "IMG_0001.HEIC"), CaptureDate: date, Subject: "Jane_Doe"},
			suffix:  ".JPEG",
			rename:  true,
			expPath: filepath.Join(dir, "2023-07-04;Jane_Doe.JPEG"),
		},
		"renamed mov": {
			task:    convert.Task{Source: filepath.Join(dir, "IMG_0001.MOV"), CaptureDate: date, Subject: "Jane_Doe"},
			suffix:  convert.LiveSuffix,
			rename:  true,
			expPath: filepath.Join(dir, "2023-07-04;Jane_Doe_live.mov"),
		},
		"heic without rename swaps the extension": {
			task:    convert.Task{Source: filepath.Join(dir, "IMG_0001.HEIC")},
			suffix:  ".PNG",
			expPath: filepath.Join(dir, "IMG_0001.PNG"),
		},
		"mov without rename is unchanged": {
			task:    convert.Task{Source: filepath.Join(dir, "IMG_0001.MOV")},
			suffix:  "",
			expPath: filepath.Join(dir, "IMG_0001.MOV"),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			task := test.task
			assert.Equal(t, test.expPath, convert.OutputPath(&task, test.suffix, test.rename))
		})
	}
}
