package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"melofm/cache"
	"melofm/config"
	"melofm/gateway"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token [jwt]",
	Short: "保存会话token",
	Long:  `把后端签发的会话token写入状态存储，不带参数时显示当前token信息。`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if err := cache.ConnectRedis(cfg); err != nil {
			log.Fatalf("无法连接到Redis: %v", err)
		}
		defer cache.CloseRedis()

		ctx := context.Background()

		if len(args) == 0 {
			token, err := cache.GetToken(ctx)
			if err != nil || token == "" {
				fmt.Println("当前没有保存的token")
				return
			}
			claims, err := gateway.ParseTokenClaims(token)
			if err != nil {
				fmt.Printf("token无法解析: %v\n", err)
				return
			}
			status := "有效"
			if claims.Expired(time.Now()) {
				status = "已过期"
			}
			fmt.Printf("用户: %s, 状态: %s, 过期时间: %s\n", claims.UserID, status, claims.ExpiresAt.Format(time.RFC3339))
			return
		}

		claims, err := gateway.ParseTokenClaims(args[0])
		if err != nil {
			log.Fatalf("token无法解析: %v", err)
		}
		if claims.Expired(time.Now()) {
			log.Fatal("token已过期")
		}
		if err := cache.SetToken(ctx, args[0]); err != nil {
			log.Fatalf("保存token失败: %v", err)
		}
		fmt.Printf("已保存用户 %s 的token\n", claims.UserID)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
