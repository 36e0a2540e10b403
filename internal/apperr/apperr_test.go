package apperr

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestClassificationSurvivesWrapping(t *testing.T) {
	err := errors.Wrap(ErrOrderNotFound.New("0211"), "transition")

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, ErrOrderNotFound))
	assert.False(t, Is(err, ErrStoreNotFound))

	e, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, e.HTTPStatus())
}

func TestCreditLimitUsesBadRequest(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrCreditLimitExceeded.New().HTTPStatus())
	assert.Equal(t, http.StatusUnprocessableEntity, ErrNotConfirmable.New("1", "cancelled").HTTPStatus())
}

func TestUnclassifiedIsInternal(t *testing.T) {
	err := errors.New("pq: connection refused")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal error", Localize(err, language.English))
}

func TestLocalize(t *testing.T) {
	err := ErrNotCancellable.New("0213", "delivered")

	assert.Equal(t, "order 0213 is not in a cancellable state (current: delivered)", Localize(err, language.English))
	assert.Equal(t, "주문 0213 은(는) 취소할 수 없는 상태입니다 (현재: delivered)", Localize(err, language.Korean))
	assert.Equal(t, "신용한도를 초과합니다.", Localize(ErrCreditLimitExceeded.New(), language.Korean))
}

func TestNegotiate(t *testing.T) {
	assert.Equal(t, language.Korean, Negotiate("", language.Korean))
	assert.Equal(t, language.English, Negotiate("en-US,en;q=0.9", language.Korean))
	assert.Equal(t, language.Korean, Negotiate("ko-KR", language.English))
}

func TestInternalErrorMessageKeepsCause(t *testing.T) {
	err := Internal(errors.New("deadlock detected"))
	assert.Equal(t, "internal error: deadlock detected", err.Error())
	assert.Equal(t, "deadlock detected", errors.Cause(err).Error())
}
