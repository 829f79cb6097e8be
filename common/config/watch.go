package config

import (
	"path/filepath"

	"github.com/favbox/h1wire/common/hlog"
	"github.com/fsnotify/fsnotify"
)

// Watcher 监视配置文件并在变更后重新加载。
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch 监视配置文件 path，每次写入或重建后重新解析，并把新配置交给 onChange。
// 解析失败时只记录日志，保持旧配置不变。
//
// 监视的是文件所在目录，以便兼容编辑器先删除再重建文件的保存方式。
func Watch(path string, onChange func([]Option)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = fw.Close()
		return nil, err
	}
	if err = fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	hlog.SystemLogger().Debugf("[config] 正在监视配置文件：%s", abs)

	w := &Watcher{watcher: fw, done: make(chan struct{})}
	go w.loop(abs, onChange)
	return w, nil
}

func (w *Watcher) loop(path string, onChange func([]Option)) {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			opts, err := LoadFile(path)
			if err != nil {
				hlog.SystemLogger().Errorf("[config] 重新加载配置文件 %s 失败：%v", path, err)
				continue
			}
			hlog.SystemLogger().Infof("[config] 配置文件已重新加载：%s", path)
			onChange(opts)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			hlog.SystemLogger().Errorf("[config] 错误发生于监视配置文件：%v", err)
		}
	}
}

// Close 停止监视，并等待监视协程退出。
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
