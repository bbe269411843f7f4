package api

import (
	"context"
	"errors"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"path"
	"sync"

	"github.com/chenBenjamin97/tactical-map/pkg/store"
	"github.com/chenBenjamin97/tactical-map/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

//RunStore is the runs registry the API works with
type RunStore interface {
	store.RunRecorder
	CreateRun(source string) (*store.Run, error)
	GetRun(id string) (*store.Run, error)
	ListRuns() ([]store.Run, error)
}

//AnalyzeFunc analyses an uploaded video, blocking until done or ctx is cancelled
type AnalyzeFunc func(ctx context.Context, srcVideoName, runID string, rec store.RunRecorder)

//runners keeps the cancel function of every run in progress
type runners struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func (r *runners) start(runID string, fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	r.cancels[runID] = cancel
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.cancels, runID)
			r.mu.Unlock()
			cancel()
		}()
		fn(ctx)
	}()
}

func (r *runners) stop(runID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cancel, ok := r.cancels[runID]
	if ok {
		cancel()
	}
	return ok
}

func SetRouter(runs RunStore, analyze AnalyzeFunc) *gin.Engine {
	r := gin.Default()
	inProgress := &runners{cancels: make(map[string]context.CancelFunc)}

	//serve html pages to client
	r.Static("/client", viper.GetString("frontend.static-files-path"))
	r.StaticFile("/", viper.GetString("frontend.static-files-path")+"home_page/dist/index.html")

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/ReadyVideosNames", func(ctx *gin.Context) {
		if names, err := utils.ListDir(viper.GetString("directory.ready")); err != nil {
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, names)
		}
	})

	apiRoutes.GET("/UserUploadsVideosNames", func(ctx *gin.Context) {
		if names, err := utils.ListDir(viper.GetString("directory.source")); err != nil {
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, names)
		}
	})

	apiRoutes.GET("/Play", func(ctx *gin.Context) {
		videoName := ctx.Request.URL.Query().Get("name")
		if videoName == "" {
			ctx.Status(http.StatusNotAcceptable) //missing url parameter
			return
		}

		analyzed := ctx.Request.URL.Query().Get("analyzed")
		if analyzed != "true" && analyzed != "false" {
			ctx.Status(http.StatusNotAcceptable) //missing url parameter
			return
		}

		var videoPath string
		if analyzed == "true" {
			videoPath = path.Join(viper.GetString("directory.ready"), path.Base(videoName)+"."+viper.GetString("video.prod_format"))
		} else {
			videoPath = path.Join(viper.GetString("directory.source"), path.Base(videoName)+"."+viper.GetString("video.prod_format"))
		}

		if _, err := os.Stat(videoPath); err != nil {
			if os.IsNotExist(err) {
				ctx.Status(http.StatusNotFound)
				return
			} else {
				ctx.Status(http.StatusInternalServerError)
				return
			}
		}

		ctx.Header("Content-Type", "video/mp4")
		http.ServeFile(ctx.Writer, ctx.Request, videoPath)
	})

	apiRoutes.POST("/Upload", func(ctx *gin.Context) {
		file, fHeader, err := ctx.Request.FormFile("video")
		if err != nil {
			ctx.Status(http.StatusBadRequest)
			return
		}
		defer file.Close()

		videoName := path.Base(fHeader.Filename)

		if existNames, err := utils.ListDir(viper.GetString("directory.source")); err != nil {
			ctx.Status(http.StatusInternalServerError)
			return
		} else {
			if utils.InSlice(videoName, existNames) {
				ctx.Status(http.StatusNotAcceptable)
				return
			}
		}

		log.Printf("api/Upload: Recived new file: name - '%s', size - %v Bytes", videoName, fHeader.Size)

		fileBytes, err := ioutil.ReadAll(file)
		if err != nil {
			log.Printf("api/Upload: Could not read request's body, got '%v'", err)
			ctx.Status(http.StatusInternalServerError)
			return
		}

		srcFilePath := path.Join(viper.GetString("directory.source"), videoName)

		if err = ioutil.WriteFile(srcFilePath, fileBytes, 0444); err != nil {
			log.Printf("api/Upload: Could not write '%s' file, got '%v'", srcFilePath, err)
			ctx.Status(http.StatusInternalServerError)
			return
		}

		run, err := runs.CreateRun(videoName)
		if err != nil {
			log.Printf("api/Upload: Could not register run of '%s', got '%v'", videoName, err)
			ctx.Status(http.StatusInternalServerError)
			return
		}

		inProgress.start(run.ID, func(runCtx context.Context) {
			analyze(runCtx, videoName, run.ID, runs)
		})

		ctx.JSON(http.StatusAccepted, run)
	})

	apiRoutes.GET("/Runs", func(ctx *gin.Context) {
		if list, err := runs.ListRuns(); err != nil {
			log.Printf("api/Runs: Error, got '%v'", err)
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, list)
		}
	})

	apiRoutes.GET("/Runs/:id", func(ctx *gin.Context) {
		run, err := runs.GetRun(ctx.Param("id"))
		if errors.Is(err, store.ErrRunNotFound) {
			ctx.Status(http.StatusNotFound)
			return
		} else if err != nil {
			log.Printf("api/Runs: Error, got '%v'", err)
			ctx.Status(http.StatusInternalServerError)
			return
		}

		ctx.JSON(http.StatusOK, run)
	})

	apiRoutes.POST("/Runs/:id/Stop", func(ctx *gin.Context) {
		id := ctx.Param("id")
		if inProgress.stop(id) {
			ctx.Status(http.StatusAccepted)
			return
		}

		//not in progress: either unknown or already finished
		if _, err := runs.GetRun(id); errors.Is(err, store.ErrRunNotFound) {
			ctx.Status(http.StatusNotFound)
		} else if err != nil {
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.Status(http.StatusConflict)
		}
	})

	return r
}
