package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobtrack/internal/api/middleware"
	"jobtrack/internal/database"
)

// BoardHandler 负责处理与看板相关的 API 请求。
// 所有读写都以上下文中的 userID 为界，不存在跨用户的列表。
type BoardHandler struct {
	db *gorm.DB
}

// NewBoardHandler 构造 BoardHandler。
func NewBoardHandler(db *gorm.DB) *BoardHandler {
	return &BoardHandler{db: db}
}

type createBoardRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type boardResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	UserID    uint      `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListBoards 列出当前用户的全部看板。
func (h *BoardHandler) ListBoards(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	var boards []database.Board
	if err := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&boards).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list boards failed", slog.Any("error", err))
		Internal(c, "Server Error")
		return
	}

	items := make([]boardResponse, 0, len(boards))
	for _, b := range boards {
		items = append(items, newBoardResponse(b))
	}

	c.JSON(http.StatusOK, items)
}

// CreateBoard 创建一块归属当前用户的看板。
// 拥有者在创建时写入，之后不可变更。
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	var req createBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	board := database.Board{
		Name:   req.Name,
		UserID: userID,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&board).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create board failed", slog.Any("error", err))
		Internal(c, "Server Error")
		return
	}

	c.JSON(http.StatusCreated, newBoardResponse(board))
}

func newBoardResponse(board database.Board) boardResponse {
	return boardResponse{
		ID:        board.ID,
		Name:      board.Name,
		UserID:    board.UserID,
		CreatedAt: board.CreatedAt,
	}
}
