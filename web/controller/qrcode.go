package controller

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/allblack/allblack-panel/web/service"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

// QRCodeController renders the code printed on each table. Scanning it opens
// the ordering page with the table code filled in.
type QRCodeController struct {
	settingService service.SettingService
}

func NewQRCodeController(g *gin.RouterGroup) *QRCodeController {
	a := &QRCodeController{}
	g.GET("/:code/qrcode", a.tableQRCode)
	return a
}

// TableURL returns base with the mesa query parameter set to code.
func TableURL(base string, code string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("mesa", code)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (a *QRCodeController) tableQRCode(c *gin.Context) {
	code := service.NormalizeTableCode(c.Param("code"))
	if code == "" || strings.ContainsAny(code, "/?#&") {
		jsonMsg(c, "", errors.Join(service.ErrValidation, errors.New("invalid table code")))
		return
	}
	base, err := a.settingService.GetPublicBaseURL()
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	target, err := TableURL(base, code)
	if err != nil {
		jsonMsg(c, "", errors.Join(service.ErrValidation, err))
		return
	}
	png, err := qrcode.Encode(target, qrcode.Medium, 512)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="mesa-`+code+`.png"`)
	c.Data(http.StatusOK, "image/png", png)
}
