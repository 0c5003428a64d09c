// Package codecmock holds testify mocks for the codec collaborators.
package codecmock

import (
	"time"

	"github.com/stretchr/testify/mock"

	"heicbatch/internal/codec"
)

// Codec is a mock of the picture codec.
type Codec struct {
	mock.Mock
}

// Decode provides a mock function with given fields: path
func (_m *Codec) Decode(path string) (*codec.Picture, error) {
	ret := _m.Called(path)

	var r0 *codec.Picture
	if rf, ok := ret.Get(0).(func(string) *codec.Picture); ok {
		r0 = rf(path)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*codec.Picture)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(string) error); ok {
		r1 = rf(path)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Encode provides a mock function with given fields: pic, dst, format, opts
func (_m *Codec) Encode(pic *codec.Picture, dst string, format codec.Format, opts codec.Options) error {
	ret := _m.Called(pic, dst, format, opts)

	if rf, ok := ret.Get(0).(func(*codec.Picture, string, codec.Format, codec.Options) error); ok {
		return rf(pic, dst, format, opts)
	}
	return ret.Error(0)
}

// Prober is a mock of the video prober.
type Prober struct {
	mock.Mock
}

// CreationTime provides a mock function with given fields: path
func (_m *Prober) CreationTime(path string) (time.Time, error) {
	ret := _m.Called(path)

	var r0 time.Time
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(time.Time)
	}
	return r0, ret.Error(1)
}
