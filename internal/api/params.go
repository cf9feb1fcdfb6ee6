package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

// BindID はパスパラメータ name を UUID としてバインドし、正規化した文字列を返します。
func BindID(c *gin.Context, name string) (string, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// BindOptionalQueryID はクエリパラメータ name を任意の UUID としてバインドします。
// 指定されていない場合は空文字を返します。
func BindOptionalQueryID(c *gin.Context, name string) (string, error) {
	var id *uuid.UUID
	if err := runtime.BindQueryParameter("form", true, false, name, c.Request.URL.Query(), &id); err != nil {
		return "", err
	}
	if id == nil {
		return "", nil
	}
	return id.String(), nil
}
