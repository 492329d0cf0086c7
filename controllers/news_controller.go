package controllers

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/btnpop/btnpop-api/config"
	"github.com/btnpop/btnpop-api/middleware"
	"github.com/btnpop/btnpop-api/models"
	"github.com/btnpop/btnpop-api/utils"
)

// ---------------- LIST ----------------
func ListNews(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		col := cfg.Collection("news")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		page := queryInt(c, "page", 1)
		limit := queryInt(c, "limit", 10)

		filter := bson.M{}
		if category := c.Query("category"); category != "" {
			filter["category"] = category
		}
		if c.Query("featured") == "true" {
			filter["featured"] = true
		}
		if c.Query("trending") == "true" {
			filter["trending"] = true
		}
		if search := c.Query("search"); search != "" {
			filter["$text"] = bson.M{"$search": search}
		}

		opts := options.Find().
			SetSkip(int64((page - 1) * limit)).
			SetLimit(int64(limit)).
			SetSort(bson.D{{Key: "publish_date", Value: -1}})

		cursor, err := col.Find(ctx, filter, opts)
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("list news")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		news := []models.News{}
		if err := cursor.All(ctx, &news); err != nil {
			cfg.Logger.Error().Err(err).Msg("decode news")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		total, err := col.CountDocuments(ctx, filter)
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("count news")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"news":        news,
			"totalPages":  int(math.Ceil(float64(total) / float64(limit))),
			"currentPage": page,
			"totalNews":   total,
		})
	}
}

// ---------------- FEATURED ----------------
func FeaturedNews(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryInt(c, "limit", 6)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Find().
			SetLimit(int64(limit)).
			SetSort(bson.D{{Key: "publish_date", Value: -1}})

		cursor, err := cfg.Collection("news").Find(ctx, bson.M{"featured": true}, opts)
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("featured news")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		news := []models.News{}
		if err := cursor.All(ctx, &news); err != nil {
			cfg.Logger.Error().Err(err).Msg("decode featured news")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.JSON(http.StatusOK, news)
	}
}

// ---------------- TRENDING ----------------
// TrendingNews ranks articles by engagement (likes + dislikes + views).
func TrendingNews(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pipeline := trendingPipeline()
		cursor, err := cfg.Collection("news").Aggregate(ctx, pipeline)
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("trending news")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		news := []models.News{}
		if err := cursor.All(ctx, &news); err != nil {
			cfg.Logger.Error().Err(err).Msg("decode trending news")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"news": news})
	}
}

func trendingPipeline() []bson.M {
	return []bson.M{
		{"$addFields": bson.M{
			"engagement": bson.M{"$add": bson.A{"$likes", "$dislikes", "$views"}},
		}},
		{"$sort": bson.M{"engagement": -1}},
		{"$limit": 5},
	}
}

// ---------------- LATEST ----------------
func LatestNews(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Find().
			SetLimit(5).
			SetSort(bson.D{{Key: "publish_date", Value: -1}})

		cursor, err := cfg.Collection("news").Find(ctx, bson.M{}, opts)
		if err != nil {
			cfg.Logger.Error().Err(err).Msg("latest news")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		news := []models.News{}
		if err := cursor.All(ctx, &news); err != nil {
			cfg.Logger.Error().Err(err).Msg("decode latest news")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.JSON(http.StatusOK, news)
	}
}

// ---------------- GET ----------------
// GetNews looks an article up by ObjectID or slug and bumps its view
// counter.
func GetNews(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		col := cfg.Collection("news")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var news models.News
		err := col.FindOneAndUpdate(
			ctx,
			idOrSlugFilter(c.Param("id")),
			bson.M{"$inc": bson.M{"views": 1}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&news)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "News not found"})
			return
		}

		c.JSON(http.StatusOK, news)
	}
}

// ---------------- CREATE ----------------
func CreateNews(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.PostForm("category")
		if category == "" || !models.ValidNewsCategory(category) {
			category = "General"
		}

		publishDate := time.Now()
		if raw := c.PostForm("date"); raw != "" {
			if t, ok := middleware.ParseDate(raw); ok {
				publishDate = t
			}
		}

		imageURL := ""
		if fileHeader, err := c.FormFile("image"); err == nil {
			url, err := cfg.Store.SaveImage(fileHeader)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			imageURL = url
		}

		news := models.News{
			ID:          primitive.NewObjectID(),
			Title:       c.PostForm("title"),
			Subtitle:    c.PostForm("subtitle"),
			Summary:     c.PostForm("summary"),
			Content:     c.PostForm("content"),
			Author:      c.PostForm("author"),
			ImageURL:    imageURL,
			Category:    category,
			Tags:        splitTags(c.PostForm("tags")),
			PublishDate: publishDate,
			UpdatedAt:   time.Now(),
			Featured:    strings.EqualFold(c.PostForm("featured"), "true"),
			Trending:    strings.EqualFold(c.PostForm("trending"), "true"),
			Slug:        utils.GenerateSlug(c.PostForm("title")),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := cfg.Collection("news").InsertOne(ctx, news); err != nil {
			cfg.Logger.Error().Err(err).Msg("create news")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.JSON(http.StatusCreated, news)
	}
}

// ---------------- UPDATE ----------------
func UpdateNews(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid news ID"})
			return
		}

		col := cfg.Collection("news")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.News
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "News not found"})
			return
		}

		update := bson.M{"updated_at": time.Now()}

		if title := c.PostForm("title"); title != "" {
			update["title"] = title
			if title != existing.Title {
				update["slug"] = utils.GenerateSlug(title)
			}
		}
		if subtitle, ok := c.GetPostForm("subtitle"); ok {
			update["subtitle"] = subtitle
		}
		if summary, ok := c.GetPostForm("summary"); ok {
			update["summary"] = summary
		}
		if content := c.PostForm("content"); content != "" {
			update["content"] = content
		}
		if author := c.PostForm("author"); author != "" {
			update["author"] = author
		}
		if category := c.PostForm("category"); category != "" && models.ValidNewsCategory(category) {
			update["category"] = category
		}
		if raw, ok := c.GetPostForm("tags"); ok {
			update["tags"] = splitTags(raw)
		}
		if raw, ok := c.GetPostForm("featured"); ok {
			update["featured"] = strings.EqualFold(raw, "true")
		}
		if raw, ok := c.GetPostForm("trending"); ok {
			update["trending"] = strings.EqualFold(raw, "true")
		}
		if raw := c.PostForm("date"); raw != "" {
			if t, ok := middleware.ParseDate(raw); ok {
				update["publish_date"] = t
			}
		}

		if fileHeader, err := c.FormFile("image"); err == nil {
			url, err := cfg.Store.SaveImage(fileHeader)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			if existing.ImageURL != "" {
				if err := cfg.Store.DeleteImage(existing.ImageURL); err != nil {
					cfg.Logger.Warn().Err(err).Str("image", existing.ImageURL).Msg("delete old news image")
				}
			}
			update["image_url"] = url
		}

		if _, err := col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update}); err != nil {
			cfg.Logger.Error().Err(err).Msg("update news")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		var updated models.News
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&updated); err != nil {
			cfg.Logger.Error().Err(err).Msg("reload updated news")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

// ---------------- DELETE ----------------
func DeleteNews(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid news ID"})
			return
		}

		col := cfg.Collection("news")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.News
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "News not found"})
			return
		}

		if _, err := col.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
			cfg.Logger.Error().Err(err).Msg("delete news")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		if existing.ImageURL != "" {
			if err := cfg.Store.DeleteImage(existing.ImageURL); err != nil {
				cfg.Logger.Warn().Err(err).Str("image", existing.ImageURL).Msg("delete news image")
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "News deleted successfully"})
	}
}

// ---------------- LIKE / DISLIKE ----------------
type voteInput struct {
	PreviousAction string `json:"previousAction"`
}

func LikeNews(cfg *config.Config) gin.HandlerFunc {
	return voteHandler(cfg, models.VoteLiked)
}

func DislikeNews(cfg *config.Config) gin.HandlerFunc {
	return voteHandler(cfg, models.VoteDisliked)
}

// voteHandler applies the floor-at-zero like/dislike toggle. The
// previousAction hint comes from the caller's local storage and is not
// verified server-side, so the counters stay best-effort.
func voteHandler(cfg *config.Config, action models.VoteAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid news ID"})
			return
		}

		var input voteInput
		_ = c.ShouldBindJSON(&input)

		col := cfg.Collection("news")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var news models.News
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&news); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "News not found"})
			return
		}

		likes, dislikes := models.ApplyVote(news.Likes, news.Dislikes, action, models.VoteAction(input.PreviousAction))
		if likes == news.Likes && dislikes == news.Dislikes {
			c.JSON(http.StatusOK, news)
			return
		}

		update := bson.M{"$set": bson.M{"likes": likes, "dislikes": dislikes}}
		if _, err := col.UpdateOne(ctx, bson.M{"_id": oid}, update); err != nil {
			cfg.Logger.Error().Err(err).Msg("update vote counters")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		news.Likes = likes
		news.Dislikes = dislikes
		c.JSON(http.StatusOK, news)
	}
}

func splitTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
