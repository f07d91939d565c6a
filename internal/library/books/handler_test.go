package books

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrFrom(t *testing.T) {
	// ドメインエラーはコードとメッセージをそのまま返す
	e := apiErrFrom(ErrConflict("isbn already exists"))
	assert.Equal(t, CodeConflict, e.Error.Code)
	assert.Equal(t, "isbn already exists", e.Error.Message)

	// ドライバ由来の生エラーは外に出さない
	e = apiErrFrom(errors.New("Error 1451: Cannot delete or update a parent row"))
	assert.Equal(t, CodeInternal, e.Error.Code)
	assert.Equal(t, "internal error", e.Error.Message)
}
