package geo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", newError(KindNotFound, OpCityByIP, errors.New("cause")))

	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrLookupFailed)
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestError_Message(t *testing.T) {
	err := newError(KindLookupFailed, OpASNByIP, errors.New("bad ip"))
	require.Equal(t, "asn_by_ip: lookup_failed: bad ip", err.Error())

	require.Equal(t, "not_initialized", ErrNotInitialized.Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := newError(KindRefreshSubResourceFailed, ResourceASNDB, cause)

	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, ErrRefreshSubResourceFailed)
}

func TestKindOf_Unknown(t *testing.T) {
	require.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	require.Equal(t, KindUnknown, KindOf(nil))
	require.Equal(t, "unknown", KindUnknown.String())
}
