package resp

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedDate(t *testing.T) {
	d := FixedDate(time.Date(2015, 10, 21, 15, 28, 0, 0, time.FixedZone("CST", 8*3600)))
	assert.Equal(t, "Wed, 21 Oct 2015 07:28:00 GMT", string(d.CurrentHTTPDate()))
}

func TestSystemDate(t *testing.T) {
	b := SystemDate().CurrentHTTPDate()
	got, err := time.Parse(http.TimeFormat, string(b))
	assert.Nil(t, err)
	assert.WithinDuration(t, time.Now(), got, 3*time.Second)
	assert.Same(t, SystemDate(), SystemDate())
}
