package main

import (
	"log"
	"os"

	"github.com/chenBenjamin97/tactical-map/pkg/api"
	"github.com/chenBenjamin97/tactical-map/pkg/pipeline"
	"github.com/chenBenjamin97/tactical-map/pkg/store"
	"github.com/chenBenjamin97/tactical-map/pkg/video"
	"github.com/spf13/viper"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	pipeline.SetDefaults()
	video.SetOutputDefaults()
	viper.SetDefault("database.path", "./data/runs.db")

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error: Could not read config file, got '%v'", err)
	}

	//first - create project's data root dir
	if _, err := os.Stat(viper.GetString("directory.root")); err != nil {
		if os.IsNotExist(err) {
			if os.Mkdir(viper.GetString("directory.root"), 0766) != nil {
				log.Printf("Error Creating '%s' directory, got '%v'", viper.GetString("directory.root"), err)
			}
		}
	}

	//create missing directories from config file
	for _, dir := range viper.GetStringMap("directory") {
		if _, err := os.Stat(dir.(string)); err != nil {
			if os.IsNotExist(err) {
				if os.Mkdir(dir.(string), 0766) != nil {
					log.Printf("Error Creating '%s' directory, got '%v'", dir.(string), err)
				}
			}
		}
	}

	if viper.GetString("video.prod_format") == "" || viper.GetString("detector.script") == "" || viper.GetString("frontend.static-files-path") == "" ||
		viper.GetString("pitch.keypoints_map") == "" || viper.GetString("pitch.tactical_map") == "" {
		log.Fatalf("Error: Missing critical configurations")
	}

	//validate analysis configuration
	params, err := pipeline.LoadParams()
	if err != nil {
		log.Fatalf("Error: Invalid analysis configuration, got '%v'", err)
	}
	if _, err := pipeline.LoadReferences(params.ColorsPerTeam); err != nil {
		log.Fatalf("Error: Invalid teams configuration, got '%v'", err)
	}

	runs, err := store.Open(viper.GetString("database.path"))
	if err != nil {
		log.Fatalf("Error: Could not open runs database, got '%v'", err)
	}
	defer runs.Close()

	r := api.SetRouter(runs, video.Tag)
	if err := r.Run(":" + viper.GetString("http.port")); err != nil {
		log.Fatalf("Error: Got '%v'", err)
	}
}
