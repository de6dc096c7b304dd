package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"melofm/cache"
	"melofm/config"
	"melofm/gateway"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".flac": true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "监听上传目录",
	Long:  `监听配置的上传目录，新放入的音频文件自动上传到后端。`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if cfg.WatchDir == "" {
			log.Fatal("未配置WATCH_DIR")
		}
		if err := cache.ConnectRedis(cfg); err != nil {
			log.Fatalf("无法连接到Redis: %v", err)
		}
		defer cache.CloseRedis()

		gw := gateway.NewClient(cfg.APIBaseURL, func() string {
			token, err := cache.GetToken(context.Background())
			if err != nil {
				return ""
			}
			return token
		})

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Fatalf("创建文件监听失败: %v", err)
		}
		defer watcher.Close()

		if err := watcher.Add(cfg.WatchDir); err != nil {
			log.Fatalf("监听目录失败: %v", err)
		}
		fmt.Printf("正在监听上传目录: %s\n", cfg.WatchDir)

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create == 0 {
					continue
				}
				if !audioExts[strings.ToLower(filepath.Ext(event.Name))] {
					continue
				}
				// 等文件写完再上传
				time.Sleep(2 * time.Second)
				if err := uploadFile(gw, event.Name); err != nil {
					log.Printf("上传失败 %s: %v", event.Name, err)
					continue
				}
				fmt.Printf("已上传: %s\n", filepath.Base(event.Name))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("监听错误: %v", err)
			}
		}
	},
}

func uploadFile(gw *gateway.Client, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// 文件名形如 "Artist - Title.mp3"，拆不出来就整个当标题
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	title, artist := name, ""
	if parts := strings.SplitN(name, " - ", 2); len(parts) == 2 {
		artist, title = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	return gw.UploadAudio(ctx, filepath.Base(path), f, title, artist)
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
