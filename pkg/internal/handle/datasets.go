package handle

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auditiq/auditiq-gateway/pkg/internal/service"
	"github.com/auditiq/auditiq-gateway/pkg/log"
)

// maxUploadBytes 上传文件大小上限.
const maxUploadBytes = 50 << 20 // 50MB

// UploadDataset 处理数据集上传：multipart 的 file 字段为 CSV 内容，
// 解析画像后写对象存储与元数据，并镜像到计算后端.
func UploadDataset(c *gin.Context) {
	authUser := currentUser(c)
	if authUser == nil {
		return
	}

	l := log.Logger()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		l.Warn().Err(err).Msg("upload missing file field")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})

		return
	}

	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close() //nolint:errcheck

	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filename := fileHeader.Filename
	if name := c.PostForm("dataset_name"); name != "" {
		filename = name
	}

	svc := service.NewDatasetService(c.Request.Context())

	resp, err := svc.Ingest(c.Request.Context(), authUser, filename, content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListDatasets 返回当前用户的数据集列表.
func ListDatasets(c *gin.Context) {
	user := resolveUser(c)
	if user == nil {
		return
	}

	svc := service.NewDatasetService(c.Request.Context())

	resp, err := svc.List(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetDataset 返回单个数据集详情，附带限时下载 URL.
func GetDataset(c *gin.Context) {
	user := resolveUser(c)
	if user == nil {
		return
	}

	svc := service.NewDatasetService(c.Request.Context())

	resp, err := svc.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteDataset 删除数据集：对象存储尽力删，元数据必删.
func DeleteDataset(c *gin.Context) {
	user := resolveUser(c)
	if user == nil {
		return
	}

	svc := service.NewDatasetService(c.Request.Context())

	resp, err := svc.Delete(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
